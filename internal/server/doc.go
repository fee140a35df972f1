// Package server implements the MCP (Model Context Protocol) server for plate
// analysis.
//
// This package provides a JSON-RPC 2.0 server that exposes the well plate
// pipeline to MCP-compatible clients, so an assistant can analyze a plate
// photo already on disk and inspect the intermediate detections.
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
// Plate Analysis:
//   - plate_analyze: Full pipeline, same result shape as POST /analyze
//   - plate_detect_wells: Wells and trials, optional overlay PNG
//   - plate_sample_wells: Inner-disk channel means per trial
//
// Calibration:
//   - calibration_info: Loaded model description
//   - calibration_predict: Readings to concentrations
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the process, since a
// client usually runs several tools against the same photo.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A plate without detectable wells is a successful call with zero trials.
package server
