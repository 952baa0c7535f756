// Package server implements the MCP (Model Context Protocol) server for point
// annotation and spatial analysis of histopathology slides.
//
// This package provides a JSON-RPC 2.0 server that exposes one annotation
// session through the MCP protocol. Any MCP client can act as the display:
// it places and erases markers, drives the viewport and asks for rendered
// PNGs of the current view.
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
// Requests are handled one at a time, in order.
//
// # Available Tools
//
// Session and Files:
//   - session_new, image_open, image_info, recent_list
//   - project_open, project_save: .hpa project files
//   - annotations_load, annotations_save: JSON annotation files
//
// Annotation Editing:
//   - annotation_add, annotation_erase: take image or view coordinates
//   - annotation_undo, annotation_redo, annotation_clear
//   - annotation_list, annotation_counts
//   - autocount_run: replace markers with detector output
//
// Calibration and Style:
//   - calibrate: micrometres per pixel
//   - marker_style: colours, size, visibility, scale bar
//
// Viewport:
//   - view_resize, view_fit, view_actual_size, view_zoom, view_pan
//   - view_state, view_pointer
//   - view_render: returns MCP image content
//
// Image Adjustments:
//   - image_adjust, image_rotate, image_flip, image_reset
//   - image_export: full-resolution image with markers
//   - color_analysis
//
// Spatial Analysis:
//   - metrics_summary, metrics_export_csv, report_export_pdf
//
// # Notifications
//
// Every tool call that changes the annotations is preceded on stdout by a
// notifications/message carrying the new counts and quick metrics.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure), -32602 (invalid arguments or
//     unknown tool) or -32601 (unknown method)
//   - message: Human-readable error description
//   - data: The Go error string
//
// "Nothing to undo" and an eraser miss are results, not errors.
//
// # Usage
//
//	sess := session.New(session.Options{Logger: log})
//	srv := server.New(sess, server.Options{Logger: log})
//	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil {
//	    log.Error("server stopped", logging.Err(err))
//	}
package server
