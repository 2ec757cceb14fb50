package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ironsheep/photo-editor-mcp/internal/editor"
	"github.com/ironsheep/photo-editor-mcp/internal/imaging"
)

// Default preview box when editor_preview is called without bounds.
const (
	defaultPreviewWidth  = 1024
	defaultPreviewHeight = 1024
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "editor_load", "editor_export").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors, including rejected transitions such as a crop
// attempted while a background removal is running, return a JSON-RPC error
// response with code -32000. The session is unchanged in that case.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Debug("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	text, err := s.marshalResult(params.Name, result)
	if err != nil {
		return s.errorResponse(req.ID, -32603, "Internal error", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": text,
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Session lifecycle
	case "editor_load":
		return s.handleLoad(args)
	case "editor_status":
		return s.session.Status(), nil
	case "editor_reset":
		s.session.Reset()
		return s.session.Status(), nil

	// Crop tool
	case "editor_crop_start":
		return s.handleCropStart()
	case "editor_crop_update":
		return s.handleCropUpdate(args)
	case "editor_crop_apply":
		return s.handleCropApply()
	case "editor_crop_cancel":
		if err := s.session.CancelCrop(); err != nil {
			return nil, err
		}
		return s.session.Status(), nil

	// Adjustments
	case "editor_adjust":
		return s.handleAdjust(args)
	case "editor_rotate":
		return s.handleRotate()

	// Background removal
	case "editor_remove_background":
		return s.handleRemoveBackground(args)

	// Rendering
	case "editor_preview":
		return s.handlePreview(args)
	case "editor_sample_color":
		return s.handleSampleColor(args)
	case "editor_export":
		return s.handleExport(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// marshalResult converts a tool result to a pretty-printed JSON string.
// Marshal failures are logged and returned.
func (s *Server) marshalResult(tool string, v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.log.Error("failed to encode tool result", "tool", tool, "error", err)
		return "", fmt.Errorf("encode %s result: %w", tool, err)
	}
	return string(b), nil
}

// decodeArgs unmarshals tool arguments, tolerating an absent object.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Session Lifecycle Handlers ===

type loadArgs struct {
	Path string `json:"path"`
}

type loadResult struct {
	Image  *imaging.ImageInfo `json:"image"`
	Status editor.Status      `json:"status"`
}

func (s *Server) handleLoad(args json.RawMessage) (interface{}, error) {
	var a loadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	decoded, err := imaging.LoadFile(a.Path, s.opts.MaxInputBytes)
	if err != nil {
		return nil, err
	}
	if err := s.session.Load(decoded.Buffer); err != nil {
		return nil, err
	}
	return &loadResult{Image: decoded.Info(), Status: s.session.Status()}, nil
}

// === Crop Handlers ===

type cropResult struct {
	Region imaging.Region `json:"region"`
	Status editor.Status  `json:"status"`
}

func (s *Server) handleCropStart() (interface{}, error) {
	region, err := s.session.ActivateCrop()
	if err != nil {
		return nil, err
	}
	return &cropResult{Region: region, Status: s.session.Status()}, nil
}

// cropUpdateArgs selects one coordinate convention:
//   - display_width/display_height set: coordinates are on a rendered preview
//   - normalized true: coordinates are 0..1 fractions
//   - otherwise: coordinates are full-resolution pixels
type cropUpdateArgs struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	DisplayWidth  float64 `json:"display_width"`
	DisplayHeight float64 `json:"display_height"`
	Normalized    bool    `json:"normalized"`
}

func (s *Server) handleCropUpdate(args json.RawMessage) (interface{}, error) {
	var a cropUpdateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	var (
		region imaging.Region
		err    error
	)
	switch {
	case a.DisplayWidth != 0 || a.DisplayHeight != 0:
		region, err = s.session.UpdateCropFromDisplay(imaging.DisplayRegion{
			X: a.X, Y: a.Y, Width: a.Width, Height: a.Height,
			DisplayWidth: a.DisplayWidth, DisplayHeight: a.DisplayHeight,
		})
	case a.Normalized:
		st := s.session.Status()
		region, err = s.session.UpdateCrop(imaging.NormalizedRegion(
			a.X, a.Y, a.Width, a.Height, st.DisplayWidth, st.DisplayHeight))
	default:
		region, err = s.session.UpdateCrop(imaging.Region{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height})
	}
	if err != nil {
		return nil, err
	}
	return &cropResult{Region: region, Status: s.session.Status()}, nil
}

func (s *Server) handleCropApply() (interface{}, error) {
	if _, err := s.session.ApplyCrop(); err != nil {
		return nil, err
	}
	return s.session.Status(), nil
}

// === Adjustment Handlers ===

type adjustArgs struct {
	Brightness *float64 `json:"brightness"`
	Contrast   *float64 `json:"contrast"`
	Rotation   *int     `json:"rotation"`
}

func (s *Server) handleAdjust(args json.RawMessage) (interface{}, error) {
	var a adjustArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	_, err := s.session.UpdateAdjustments(func(adj *imaging.Adjustments) {
		if a.Brightness != nil {
			adj.Brightness = *a.Brightness
		}
		if a.Contrast != nil {
			adj.Contrast = *a.Contrast
		}
		if a.Rotation != nil {
			adj.Rotation = *a.Rotation
		}
	})
	if err != nil {
		return nil, err
	}
	return s.session.Status(), nil
}

func (s *Server) handleRotate() (interface{}, error) {
	if _, err := s.session.RotateClockwise(); err != nil {
		return nil, err
	}
	return s.session.Status(), nil
}

// === Background Removal Handler ===

type removeBackgroundArgs struct {
	// Wait blocks the tool call until the removal finishes.
	Wait bool `json:"wait"`

	// TimeoutSeconds bounds the wait. Zero waits until the request ends.
	TimeoutSeconds float64 `json:"timeout_seconds"`
}

type removeBackgroundResult struct {
	RequestImageID string        `json:"request_image_id"`
	Completed      bool          `json:"completed"`
	Status         editor.Status `json:"status"`
}

func (s *Server) handleRemoveBackground(args json.RawMessage) (interface{}, error) {
	var a removeBackgroundArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	removal, err := s.session.StartBackgroundRemoval(s.ctx)
	if err != nil {
		return nil, err
	}

	result := &removeBackgroundResult{RequestImageID: removal.ImageID().String()}
	if a.Wait {
		ctx := s.ctx
		if a.TimeoutSeconds > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(a.TimeoutSeconds*float64(time.Second)))
			defer cancel()
		}
		// A wait timeout leaves the removal running; only its outcome is an error.
		if err := removal.Wait(ctx); err != nil && ctx.Err() == nil {
			return nil, err
		}
		select {
		case <-removal.Done():
			result.Completed = true
		default:
		}
	}
	result.Status = s.session.Status()
	return result, nil
}

// === Rendering Handlers ===

type previewArgs struct {
	MaxWidth  int `json:"max_width"`
	MaxHeight int `json:"max_height"`

	// CropOverlay marks the pending crop while the crop tool is active.
	CropOverlay bool   `json:"crop_overlay"`
	ShadeColor  string `json:"shade_color"`
	GuideColor  string `json:"guide_color"`
}

type previewResult struct {
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	SourceWidth  int     `json:"source_width"`
	SourceHeight int     `json:"source_height"`
	Scale        float64 `json:"scale"`
	ImageBase64  string  `json:"image_base64"`
	MimeType     string  `json:"mime_type"`
}

func (s *Server) handlePreview(args json.RawMessage) (interface{}, error) {
	a := previewArgs{MaxWidth: defaultPreviewWidth, MaxHeight: defaultPreviewHeight, CropOverlay: true}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	p, err := s.renderPreview(a)
	if err != nil {
		return nil, err
	}
	data, err := imaging.EncodePNG(p.Image)
	if err != nil {
		return nil, err
	}
	return &previewResult{
		Width:        p.Image.Width(),
		Height:       p.Image.Height(),
		SourceWidth:  p.SourceWidth,
		SourceHeight: p.SourceHeight,
		Scale:        p.Scale,
		ImageBase64:  base64.StdEncoding.EncodeToString(data),
		MimeType:     imaging.FormatPNG.MimeType(),
	}, nil
}

// renderPreview draws the crop overlay when requested and the crop tool is
// active, and a plain preview otherwise.
func (s *Server) renderPreview(a previewArgs) (*imaging.Preview, error) {
	if !a.CropOverlay {
		return s.session.Preview(a.MaxWidth, a.MaxHeight)
	}

	style := imaging.DefaultOverlayStyle()
	if a.ShadeColor != "" {
		c, err := imaging.ParseHexColor(a.ShadeColor)
		if err != nil {
			return nil, fmt.Errorf("shade_color: %w", err)
		}
		style.Shade = c
	}
	if a.GuideColor != "" {
		c, err := imaging.ParseHexColor(a.GuideColor)
		if err != nil {
			return nil, fmt.Errorf("guide_color: %w", err)
		}
		style.Guide = c
	}

	p, err := s.session.CropPreview(a.MaxWidth, a.MaxHeight, style)
	if errors.Is(err, editor.ErrNoCrop) {
		return s.session.Preview(a.MaxWidth, a.MaxHeight)
	}
	return p, err
}

type sampleColorArgs struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Points []struct {
		X     int    `json:"x"`
		Y     int    `json:"y"`
		Label string `json:"label"`
	} `json:"points"`
}

func (s *Server) handleSampleColor(args json.RawMessage) (interface{}, error) {
	var a sampleColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	points := make([]imaging.LabeledPoint, 0, len(a.Points))
	for _, p := range a.Points {
		points = append(points, imaging.LabeledPoint{X: p.X, Y: p.Y, Label: p.Label})
	}
	if len(points) == 0 {
		points = append(points, imaging.LabeledPoint{X: a.X, Y: a.Y})
	}
	return s.session.SampleColors(points)
}

type exportArgs struct {
	Format string `json:"format"`

	// Path is a file or directory to write to. Empty returns base64 data.
	Path string `json:"path"`
}

type exportResult struct {
	Format      imaging.Format `json:"format"`
	MimeType    string         `json:"mime_type"`
	FileName    string         `json:"file_name"`
	SizeBytes   int            `json:"size_bytes"`
	Path        string         `json:"path,omitempty"`
	ImageBase64 string         `json:"image_base64,omitempty"`
}

func (s *Server) handleExport(args json.RawMessage) (interface{}, error) {
	a := exportArgs{Format: string(imaging.FormatPNG)}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	format, err := imaging.ParseFormat(a.Format)
	if err != nil {
		return nil, err
	}
	data, err := s.session.Export(format)
	if err != nil {
		return nil, err
	}

	result := &exportResult{
		Format:    format,
		MimeType:  format.MimeType(),
		FileName:  format.FileName(),
		SizeBytes: len(data),
	}
	if a.Path == "" {
		result.ImageBase64 = base64.StdEncoding.EncodeToString(data)
		return result, nil
	}

	path := a.Path
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, result.FileName)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}
	result.Path = path
	result.FileName = filepath.Base(path)
	return result, nil
}
