package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"session_new", "image_open", "image_info", "project_open", "project_save",
		"annotations_load", "annotations_save", "annotation_add", "annotation_erase",
		"annotation_undo", "annotation_redo", "annotation_clear", "annotation_list",
		"annotation_counts", "calibrate", "marker_style", "view_resize", "view_fit",
		"view_actual_size", "view_zoom", "view_pan", "view_state", "view_pointer",
		"view_render", "image_adjust", "image_rotate", "image_flip", "image_reset",
		"image_export", "color_analysis", "metrics_summary", "metrics_export_csv",
		"report_export_pdf", "autocount_run", "recent_list",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("got %d tools, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_HaveHandlers(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		if _, ok := toolHandlers[tool.Name]; !ok {
			t.Errorf("tool %s has no handler", tool.Name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}

			required, _ := tool.InputSchema["required"].([]string)
			for _, name := range required {
				if _, ok := props[name]; !ok {
					t.Errorf("required field %s not in properties", name)
				}
			}
		})
	}
}
