package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

type props map[string]interface{}

func schema(p props, required ...string) map[string]interface{} {
	if p == nil {
		p = props{}
	}
	s := map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}(p),
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

func enumProp(description string, values ...string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description, "enum": values}
}

var (
	classProp  = enumProp("Marker class. Aliases ki67 (positive) and mitosis (other) are accepted.", "positive", "other", "negative")
	coordsProp = enumProp("Coordinate space of x and y: source image pixels (default) or view window pixels", "image", "view")
	pathProp   = prop("string", "Absolute file path")
	threshold  = prop("number", "Clustering link distance in micrometres. Defaults to the configured value")
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session and Files
		{
			Name:        "session_new",
			Description: "Start a new project: discard the image, annotations, history and settings.",
			InputSchema: schema(nil),
		},
		{
			Name:        "image_open",
			Description: "Open a slide image and start a new project for it. Clears annotations and adjustments; the view is fitted to the window.",
			InputSchema: schema(props{"path": pathProp}, "path"),
		},
		{
			Name:        "image_info",
			Description: "Describe the open image: dimensions, format, file size, physical area, calibration, adjustments and marker style.",
			InputSchema: schema(nil),
		},
		{
			Name:        "project_open",
			Description: "Open a saved .hpa project, restoring its image, calibration, adjustments and annotations.",
			InputSchema: schema(props{"path": pathProp}, "path"),
		},
		{
			Name:        "project_save",
			Description: "Save the project. Without a path it is saved where it was last opened or saved, else next to the image.",
			InputSchema: schema(props{"path": pathProp}),
		},
		{
			Name:        "annotations_load",
			Description: "Replace the annotations with those in a JSON annotation file. Undo history is cleared.",
			InputSchema: schema(props{"path": pathProp}, "path"),
		},
		{
			Name:        "annotations_save",
			Description: "Write the annotations to a JSON annotation file: a list of {x, y, label_id} with 1=positive, 2=negative, 3=other.",
			InputSchema: schema(props{"path": pathProp}, "path"),
		},
		{
			Name:        "recent_list",
			Description: "List recently used images, projects and annotation files, newest first.",
			InputSchema: schema(nil),
		},

		// Annotation Editing
		{
			Name:        "annotation_add",
			Description: "Place a marker. Coordinates outside the image are rejected.",
			InputSchema: schema(props{
				"class":  classProp,
				"x":      prop("number", "X coordinate"),
				"y":      prop("number", "Y coordinate"),
				"coords": coordsProp,
			}, "class", "x", "y"),
		},
		{
			Name:        "annotation_erase",
			Description: "Erase the marker nearest to a point, within 20 view pixels at the current zoom.",
			InputSchema: schema(props{
				"x":      prop("number", "X coordinate"),
				"y":      prop("number", "Y coordinate"),
				"coords": coordsProp,
			}, "x", "y"),
		},
		{
			Name:        "annotation_undo",
			Description: "Undo the last marker edit.",
			InputSchema: schema(nil),
		},
		{
			Name:        "annotation_redo",
			Description: "Redo the last undone marker edit.",
			InputSchema: schema(nil),
		},
		{
			Name:        "annotation_clear",
			Description: "Remove every marker. This also clears the undo history.",
			InputSchema: schema(nil),
		},
		{
			Name:        "annotation_list",
			Description: "List markers in source image pixels, optionally of one class.",
			InputSchema: schema(props{"class": classProp}),
		},
		{
			Name:        "annotation_counts",
			Description: "Per-class counts with quick metrics: densities per mm² and proliferation index.",
			InputSchema: schema(nil),
		},
		{
			Name:        "autocount_run",
			Description: "Replace the markers with automatic detections for the open image. The result cannot be undone point by point.",
			InputSchema: schema(props{
				"model": prop("string", "Detector model, for example ki67 or mitosis. Default ki67"),
			}),
		},

		// Calibration and Style
		{
			Name:        "calibrate",
			Description: "Set the physical size of one pixel.",
			InputSchema: schema(props{
				"um_per_pixel": prop("number", "Micrometres per pixel, positive"),
			}, "um_per_pixel"),
		},
		{
			Name:        "marker_style",
			Description: "Change marker colours, size and visibility and scale bar visibility. Omitted fields are unchanged; returns the style.",
			InputSchema: schema(props{
				"positive_color": prop("string", "Hex colour such as #ff4d4d"),
				"other_color":    prop("string", "Hex colour"),
				"negative_color": prop("string", "Hex colour"),
				"size":           prop("integer", "Marker size, 1-50"),
				"visible":        prop("boolean", "Show markers in rendered views"),
				"show_scale_bar": prop("boolean", "Show the scale bar in rendered views"),
			}),
		},

		// Viewport
		{
			Name:        "view_resize",
			Description: "Set the view window size. A fitted view stays fitted.",
			InputSchema: schema(props{
				"width":  prop("integer", "Window width in pixels"),
				"height": prop("integer", "Window height in pixels"),
			}, "width", "height"),
		},
		{
			Name:        "view_fit",
			Description: "Fit the whole image in the window, never enlarging beyond 100%.",
			InputSchema: schema(nil),
		},
		{
			Name:        "view_actual_size",
			Description: "Show the image at 100%, centred.",
			InputSchema: schema(nil),
		},
		{
			Name:        "view_zoom",
			Description: "Zoom by a factor, or one step in or out. Zooms around the window centre unless an anchor point is given.",
			InputSchema: schema(props{
				"factor":    prop("number", "Zoom multiplier, for example 2 or 0.5"),
				"direction": enumProp("Zoom one configured step", "in", "out"),
				"x":         prop("number", "Anchor X in view pixels"),
				"y":         prop("number", "Anchor Y in view pixels"),
			}),
		},
		{
			Name:        "view_pan",
			Description: "Move the view by a number of window pixels.",
			InputSchema: schema(props{
				"dx": prop("number", "Horizontal shift"),
				"dy": prop("number", "Vertical shift"),
			}, "dx", "dy"),
		},
		{
			Name:        "view_state",
			Description: "Current zoom, pan, window, displayed image size and visible region.",
			InputSchema: schema(nil),
		},
		{
			Name:        "view_pointer",
			Description: "Image pixel and micrometre coordinates under a view point.",
			InputSchema: schema(props{
				"x": prop("number", "View X"),
				"y": prop("number", "View Y"),
			}, "x", "y"),
		},
		{
			Name:        "view_render",
			Description: "Render the current view with markers and scale bar as a PNG image.",
			InputSchema: schema(nil),
		},

		// Image Adjustments
		{
			Name:        "image_adjust",
			Description: "Set display brightness, contrast, gamma (0.1-3.0, 1.0 neutral) and filter. Omitted fields are unchanged.",
			InputSchema: schema(props{
				"brightness": prop("number", "Brightness factor"),
				"contrast":   prop("number", "Contrast factor"),
				"gamma":      prop("number", "Gamma factor"),
				"filter":     enumProp("Display filter", "NONE", "BLUR", "SHARPEN", "EDGE", "GAUSSIAN", "EDGE_ENHANCE"),
			}),
		},
		{
			Name:        "image_rotate",
			Description: "Rotate the displayed image clockwise. Markers stay attached to the tissue.",
			InputSchema: schema(props{
				"degrees": prop("integer", "Multiple of 90; negative turns counter-clockwise. Default 90"),
			}),
		},
		{
			Name:        "image_flip",
			Description: "Toggle a horizontal or vertical flip of the displayed image.",
			InputSchema: schema(props{
				"axis": enumProp("Flip axis", "horizontal", "vertical"),
			}, "axis"),
		},
		{
			Name:        "image_reset",
			Description: "Reset rotation, flips, tone and filter.",
			InputSchema: schema(nil),
		},
		{
			Name:        "image_export",
			Description: "Save the full-resolution image with all markers drawn and adjustments applied. The format follows the extension.",
			InputSchema: schema(props{"path": pathProp}, "path"),
		},
		{
			Name:        "color_analysis",
			Description: "RGB and HSV channel statistics, histograms and dominant colours of the displayed image. Optionally written as a text report.",
			InputSchema: schema(props{"path": prop("string", "Optional report file path")}),
		},

		// Spatial Analysis
		{
			Name:        "metrics_summary",
			Description: "Full metrics: counts, densities, proliferation index, pairwise distance distribution, distance clustering and nearest-neighbour statistics.",
			InputSchema: schema(props{"cluster_threshold_um": threshold}),
		},
		{
			Name:        "metrics_export_csv",
			Description: "Write the full metrics as CSV.",
			InputSchema: schema(props{"path": pathProp, "cluster_threshold_um": threshold}, "path"),
		},
		{
			Name:        "report_export_pdf",
			Description: "Write a PDF report with the class distribution chart and every metric table.",
			InputSchema: schema(props{"path": pathProp, "cluster_threshold_um": threshold}, "path"),
		},
	}
}

// handleToolsList returns the tools/list response
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
