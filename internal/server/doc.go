// Package server implements the MCP (Model Context Protocol) server that
// drives a photo edit session.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Session lifecycle:
//   - editor_load: Load a PNG or JPEG file
//   - editor_status: Report state, dimensions and adjustments
//   - editor_reset: Discard the image ("go back")
//
// Crop tool:
//   - editor_crop_start, editor_crop_update, editor_crop_apply, editor_crop_cancel
//
// Adjustments:
//   - editor_adjust: Brightness, contrast and rotation
//   - editor_rotate: Quarter turn clockwise
//
// Background removal:
//   - editor_remove_background: Asynchronous call to the removal service
//
// Rendering:
//   - editor_preview: Display-sized rendering as base64 PNG; while cropping it
//     shades the area outside the crop and draws thirds guides
//   - editor_sample_color: Rendered color at points
//   - editor_export: Final PNG or JPEG, to a file or as base64
//
// # Session Ownership
//
// The server does not own global state. It is handed an *editor.Session at
// construction and every tool call goes through that session's transitions.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	session := editor.New(editor.Options{Remover: removebg.NewClient(cfg)})
//	srv := server.New(session, server.Options{})
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
