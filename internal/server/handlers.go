package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ironsheep/histopath-mcp/internal/annotation"
	"github.com/ironsheep/histopath-mcp/internal/imaging"
	"github.com/ironsheep/histopath-mcp/internal/logging"
	"github.com/ironsheep/histopath-mcp/internal/report"
	"github.com/ironsheep/histopath-mcp/internal/session"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "annotation_add", "view_render").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// errUnknownTool is returned for a tools/call naming no tool.
var errUnknownTool = errors.New("unknown tool")

// paramsError marks malformed or missing tool arguments.
type paramsError struct{ err error }

func (e *paramsError) Error() string { return e.err.Error() }
func (e *paramsError) Unwrap() error { return e.err }

func invalidParams(format string, args ...interface{}) error {
	return &paramsError{err: fmt.Errorf(format, args...)}
}

// decode unmarshals tool arguments. Absent arguments leave v zero.
func decode(args json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(args)) == 0 || bytes.Equal(bytes.TrimSpace(args), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &paramsError{err: err}
	}
	return nil
}

// renderResult is returned by view_render and sent as MCP image content.
type renderResult struct {
	Image *imaging.EncodedImage
	View  session.ViewInfo
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// view_render returns an image item followed by the view state as text.
// Invalid arguments and unknown tools return code -32602; tool execution
// errors return code -32000 with the error text as data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	s.rec.ToolCall(params.Name, err)
	if err != nil {
		s.log.Warn("tool call failed",
			logging.String("tool", params.Name),
			logging.Duration("elapsed", time.Since(start)),
			logging.Err(err))
		var pe *paramsError
		if errors.As(err, &pe) || errors.Is(err, errUnknownTool) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	s.log.Debug("tool call",
		logging.String("tool", params.Name),
		logging.Duration("elapsed", time.Since(start)))

	var content []map[string]interface{}
	if r, ok := result.(*renderResult); ok {
		content = []map[string]interface{}{
			{"type": "image", "data": r.Image.ImageBase64, "mimeType": r.Image.MimeType},
			{"type": "text", "text": mustMarshalJSON(r.View)},
		}
	} else {
		content = []map[string]interface{}{
			{"type": "text", "text": mustMarshalJSON(result)},
		}
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": content,
		},
	}
}

type toolHandler func(s *Server, ctx context.Context, args json.RawMessage) (interface{}, error)

// toolHandlers maps every tool name in GetToolDefinitions to its handler.
var toolHandlers = map[string]toolHandler{
	// Session and Files
	"session_new":      (*Server).handleSessionNew,
	"image_open":       (*Server).handleImageOpen,
	"image_info":       (*Server).handleImageInfo,
	"project_open":     (*Server).handleProjectOpen,
	"project_save":     (*Server).handleProjectSave,
	"annotations_load": (*Server).handleAnnotationsLoad,
	"annotations_save": (*Server).handleAnnotationsSave,
	"recent_list":      (*Server).handleRecentList,

	// Annotation Editing
	"annotation_add":    (*Server).handleAnnotationAdd,
	"annotation_erase":  (*Server).handleAnnotationErase,
	"annotation_undo":   (*Server).handleAnnotationUndo,
	"annotation_redo":   (*Server).handleAnnotationRedo,
	"annotation_clear":  (*Server).handleAnnotationClear,
	"annotation_list":   (*Server).handleAnnotationList,
	"annotation_counts": (*Server).handleAnnotationCounts,
	"autocount_run":     (*Server).handleAutocountRun,

	// Calibration and Style
	"calibrate":    (*Server).handleCalibrate,
	"marker_style": (*Server).handleMarkerStyle,

	// Viewport
	"view_resize":      (*Server).handleViewResize,
	"view_fit":         (*Server).handleViewFit,
	"view_actual_size": (*Server).handleViewActualSize,
	"view_zoom":        (*Server).handleViewZoom,
	"view_pan":         (*Server).handleViewPan,
	"view_state":       (*Server).handleViewState,
	"view_pointer":     (*Server).handleViewPointer,
	"view_render":      (*Server).handleViewRender,

	// Image Adjustments
	"image_adjust":   (*Server).handleImageAdjust,
	"image_rotate":   (*Server).handleImageRotate,
	"image_flip":     (*Server).handleImageFlip,
	"image_reset":    (*Server).handleImageReset,
	"image_export":   (*Server).handleImageExport,
	"color_analysis": (*Server).handleColorAnalysis,

	// Spatial Analysis
	"metrics_summary":    (*Server).handleMetricsSummary,
	"metrics_export_csv": (*Server).handleMetricsExportCSV,
	"report_export_pdf":  (*Server).handleReportExportPDF,
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	h, ok := toolHandlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownTool, name)
	}
	return h(s, ctx, args)
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
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

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// statusResult is the reply of tools that return no data.
type statusResult struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// countsResult carries the counts after an edit.
type countsResult struct {
	session.Snapshot
	Status string            `json:"status"`
	Point  *annotation.Point `json:"point,omitempty"`
	Edit   *annotation.Edit  `json:"edit,omitempty"`
}

func (s *Server) counts(status string) *countsResult {
	return &countsResult{Snapshot: s.sess.Snapshot(), Status: status}
}

type pathArgs struct {
	Path string `json:"path"`
}

func requirePath(args json.RawMessage) (string, error) {
	var a pathArgs
	if err := decode(args, &a); err != nil {
		return "", err
	}
	if a.Path == "" {
		return "", invalidParams("path is required")
	}
	return a.Path, nil
}

// === Session and File Handlers ===

func (s *Server) handleSessionNew(_ context.Context, _ json.RawMessage) (interface{}, error) {
	s.sess.Reset()
	return map[string]interface{}{
		"status":     "ok",
		"session_id": s.sess.ID(),
		"project_id": s.sess.ProjectID(),
	}, nil
}

func (s *Server) handleImageOpen(_ context.Context, args json.RawMessage) (interface{}, error) {
	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}
	if err := s.sess.OpenImage(path); err != nil {
		return nil, err
	}
	return s.sess.Info()
}

func (s *Server) handleImageInfo(_ context.Context, _ json.RawMessage) (interface{}, error) {
	return s.sess.Info()
}

func (s *Server) handleProjectOpen(_ context.Context, args json.RawMessage) (interface{}, error) {
	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}
	res, err := s.sess.OpenProject(path)
	if err != nil {
		return nil, err
	}
	info, err := s.sess.Info()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"project_name": s.sess.ProjectName(),
		"project_id":   s.sess.ProjectID(),
		"loaded":       res,
		"image":        info,
	}, nil
}

func (s *Server) handleProjectSave(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	path, err := s.sess.SaveProject(a.Path)
	if err != nil {
		return nil, err
	}
	return &statusResult{Status: "saved", Path: path}, nil
}

func (s *Server) handleAnnotationsLoad(_ context.Context, args json.RawMessage) (interface{}, error) {
	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}
	return s.sess.LoadAnnotations(path)
}

func (s *Server) handleAnnotationsSave(_ context.Context, args json.RawMessage) (interface{}, error) {
	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}
	if err := s.sess.SaveAnnotations(path); err != nil {
		return nil, err
	}
	return &statusResult{Status: "saved", Path: path}, nil
}

func (s *Server) handleRecentList(_ context.Context, _ json.RawMessage) (interface{}, error) {
	return map[string]interface{}{"recent": s.sess.Recent()}, nil
}

// === Annotation Handlers ===

type pointArgs struct {
	Class  string   `json:"class"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Coords string   `json:"coords"`
}

// parse checks the coordinates and reports whether they are view pixels.
func (a *pointArgs) parse() (bool, error) {
	if a.X == nil || a.Y == nil {
		return false, invalidParams("x and y are required")
	}
	switch a.Coords {
	case "", "image":
		return false, nil
	case "view":
		return true, nil
	}
	return false, invalidParams("coords must be image or view, got %q", a.Coords)
}

func parseClass(name string) (annotation.MarkerClass, error) {
	c, err := annotation.ParseClass(name)
	if err != nil {
		return 0, &paramsError{err: err}
	}
	return c, nil
}

func (s *Server) handleAnnotationAdd(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a pointArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	class, err := parseClass(a.Class)
	if err != nil {
		return nil, err
	}
	view, err := a.parse()
	if err != nil {
		return nil, err
	}

	var p annotation.Point
	if view {
		p, err = s.sess.AddAtPointer(class, *a.X, *a.Y)
	} else {
		p, err = s.sess.Add(class, *a.X, *a.Y)
	}
	if err != nil {
		return nil, err
	}
	res := s.counts("added")
	res.Point = &p
	return res, nil
}

func (s *Server) handleAnnotationErase(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a pointArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	view, err := a.parse()
	if err != nil {
		return nil, err
	}

	var (
		p  annotation.Point
		ok bool
	)
	if view {
		p, ok, err = s.sess.EraseAtPointer(*a.X, *a.Y)
	} else {
		p, ok, err = s.sess.EraseAt(*a.X, *a.Y)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.counts("nothing_in_range"), nil
	}
	res := s.counts("erased")
	res.Point = &p
	return res, nil
}

func (s *Server) handleAnnotationUndo(_ context.Context, _ json.RawMessage) (interface{}, error) {
	e, ok := s.sess.Undo()
	if !ok {
		return s.counts("nothing_to_undo"), nil
	}
	res := s.counts("undone")
	res.Edit = &e
	return res, nil
}

func (s *Server) handleAnnotationRedo(_ context.Context, _ json.RawMessage) (interface{}, error) {
	e, ok := s.sess.Redo()
	if !ok {
		return s.counts("nothing_to_redo"), nil
	}
	res := s.counts("redone")
	res.Edit = &e
	return res, nil
}

func (s *Server) handleAnnotationClear(_ context.Context, _ json.RawMessage) (interface{}, error) {
	s.sess.ClearMarkers()
	return s.counts("cleared"), nil
}

func (s *Server) handleAnnotationList(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a struct {
		Class string `json:"class"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	var points []annotation.Point
	if a.Class == "" {
		points = s.sess.Points(annotation.Positive, true)
	} else {
		class, err := parseClass(a.Class)
		if err != nil {
			return nil, err
		}
		points = s.sess.Points(class, false)
	}
	return map[string]interface{}{
		"points": points,
		"count":  len(points),
	}, nil
}

func (s *Server) handleAnnotationCounts(_ context.Context, _ json.RawMessage) (interface{}, error) {
	return s.counts("ok"), nil
}

func (s *Server) handleAutocountRun(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a struct {
		Model string `json:"model"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Model == "" {
		a.Model = "ki67"
	}
	if _, err := s.sess.AutoCount(ctx, a.Model); err != nil {
		return nil, err
	}
	return s.counts("counted"), nil
}

// === Calibration and Style Handlers ===

func (s *Server) handleCalibrate(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a struct {
		Scale *float64 `json:"um_per_pixel"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == nil {
		return nil, invalidParams("um_per_pixel is required")
	}
	if err := s.sess.Calibrate(*a.Scale); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"calibration_um_per_px": s.sess.Calibration(),
		"quick_metrics":         s.sess.QuickMetrics(),
	}, nil
}

func (s *Server) handleMarkerStyle(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a struct {
		PositiveColor string `json:"positive_color"`
		OtherColor    string `json:"other_color"`
		NegativeColor string `json:"negative_color"`
		Size          *int   `json:"size"`
		Visible       *bool  `json:"visible"`
		ShowScaleBar  *bool  `json:"show_scale_bar"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}

	change := session.StyleChange{
		Colors:       map[annotation.MarkerClass]string{},
		Size:         a.Size,
		Visible:      a.Visible,
		ShowScaleBar: a.ShowScaleBar,
	}
	for class, hex := range map[annotation.MarkerClass]string{
		annotation.Positive: a.PositiveColor,
		annotation.Other:    a.OtherColor,
		annotation.Negative: a.NegativeColor,
	} {
		if hex != "" {
			change.Colors[class] = hex
		}
	}
	if err := s.sess.SetMarkerStyle(change); err != nil {
		return nil, err
	}
	return s.sess.MarkerStyle(), nil
}

// === Viewport Handlers ===

func (s *Server) viewState() (interface{}, error) {
	return s.sess.View()
}

func (s *Server) handleViewResize(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if err := s.sess.SetWindow(a.Width, a.Height); err != nil {
		return nil, &paramsError{err: err}
	}
	return s.viewState()
}

func (s *Server) handleViewFit(_ context.Context, _ json.RawMessage) (interface{}, error) {
	if err := s.sess.Fit(); err != nil {
		return nil, err
	}
	return s.viewState()
}

func (s *Server) handleViewActualSize(_ context.Context, _ json.RawMessage) (interface{}, error) {
	if err := s.sess.ActualSize(); err != nil {
		return nil, err
	}
	return s.viewState()
}

func (s *Server) handleViewZoom(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a struct {
		Factor    float64  `json:"factor"`
		Direction string   `json:"direction"`
		X         *float64 `json:"x"`
		Y         *float64 `json:"y"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}

	var err error
	switch {
	case a.Factor != 0 && a.X != nil && a.Y != nil:
		err = s.sess.ZoomAt(a.Factor, *a.X, *a.Y)
	case a.Factor != 0:
		err = s.sess.Zoom(a.Factor)
	case a.Direction == "in":
		err = s.sess.ZoomIn()
	case a.Direction == "out":
		err = s.sess.ZoomOut()
	default:
		return nil, invalidParams("either factor or direction (in, out) is required")
	}
	if err != nil {
		return nil, &paramsError{err: err}
	}
	return s.viewState()
}

func (s *Server) handleViewPan(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a struct {
		DX float64 `json:"dx"`
		DY float64 `json:"dy"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	s.sess.Pan(a.DX, a.DY)
	return s.viewState()
}

func (s *Server) handleViewState(_ context.Context, _ json.RawMessage) (interface{}, error) {
	return s.viewState()
}

func (s *Server) handleViewPointer(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a pointArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.X == nil || a.Y == nil {
		return nil, invalidParams("x and y are required")
	}
	return s.sess.Pointer(*a.X, *a.Y)
}

func (s *Server) handleViewRender(_ context.Context, _ json.RawMessage) (interface{}, error) {
	img, err := s.sess.Render()
	if err != nil {
		return nil, err
	}
	view, err := s.sess.View()
	if err != nil {
		return nil, err
	}
	return &renderResult{Image: img, View: view}, nil
}

// === Image Adjustment Handlers ===

func (s *Server) handleImageAdjust(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a struct {
		Brightness *float64 `json:"brightness"`
		Contrast   *float64 `json:"contrast"`
		Gamma      *float64 `json:"gamma"`
		Filter     *string  `json:"filter"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}

	adj := s.sess.Adjustments()
	if a.Brightness != nil {
		adj.Brightness = *a.Brightness
	}
	if a.Contrast != nil {
		adj.Contrast = *a.Contrast
	}
	if a.Gamma != nil {
		adj.Gamma = *a.Gamma
	}
	if a.Filter != nil {
		f, err := imaging.ParseFilter(*a.Filter)
		if err != nil {
			return nil, err
		}
		adj.Filter = f
	}
	if err := s.sess.SetAdjustments(adj); err != nil {
		return nil, err
	}
	return s.adjustments(), nil
}

func (s *Server) adjustments() interface{} {
	adj := s.sess.Adjustments()
	return map[string]interface{}{
		"adjustments": adj,
		"summary":     adj.Summary(),
	}
}

func (s *Server) handleImageRotate(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a struct {
		Degrees *int `json:"degrees"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	deg := 90
	if a.Degrees != nil {
		deg = *a.Degrees
	}
	if err := s.sess.Rotate(deg); err != nil {
		return nil, err
	}
	return s.adjustments(), nil
}

func (s *Server) handleImageFlip(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a struct {
		Axis string `json:"axis"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	var err error
	switch a.Axis {
	case "horizontal", "h":
		err = s.sess.FlipH()
	case "vertical", "v":
		err = s.sess.FlipV()
	default:
		return nil, invalidParams("axis must be horizontal or vertical, got %q", a.Axis)
	}
	if err != nil {
		return nil, err
	}
	return s.adjustments(), nil
}

func (s *Server) handleImageReset(_ context.Context, _ json.RawMessage) (interface{}, error) {
	if err := s.sess.ResetAdjustments(); err != nil {
		return nil, err
	}
	return s.adjustments(), nil
}

func (s *Server) handleImageExport(_ context.Context, args json.RawMessage) (interface{}, error) {
	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}
	size, err := s.sess.Export(path)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"status":  "exported",
		"path":    path,
		"width":   int(size.Width),
		"height":  int(size.Height),
		"markers": s.sess.Counts().Total(),
	}, nil
}

func (s *Server) handleColorAnalysis(_ context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Path != "" {
		if err := s.sess.ExportColorReport(a.Path); err != nil {
			return nil, err
		}
	}
	return s.sess.ColorAnalysis()
}

// === Spatial Analysis Handlers ===

type metricsArgs struct {
	Path      string   `json:"path"`
	Threshold *float64 `json:"cluster_threshold_um"`
}

func (s *Server) metricsArgs(args json.RawMessage, needPath bool) (metricsArgs, float64, error) {
	var a metricsArgs
	if err := decode(args, &a); err != nil {
		return a, 0, err
	}
	if needPath && a.Path == "" {
		return a, 0, invalidParams("path is required")
	}
	threshold := s.sess.ClusterThreshold()
	if a.Threshold != nil {
		threshold = *a.Threshold
	}
	return a, threshold, nil
}

func (s *Server) handleMetricsSummary(_ context.Context, args json.RawMessage) (interface{}, error) {
	_, threshold, err := s.metricsArgs(args, false)
	if err != nil {
		return nil, err
	}
	sum, err := s.sess.Summary(threshold)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"cluster_threshold_um": threshold,
		"summary":              sum,
		"table":                report.Text(sum),
	}, nil
}

func (s *Server) handleMetricsExportCSV(_ context.Context, args json.RawMessage) (interface{}, error) {
	a, threshold, err := s.metricsArgs(args, true)
	if err != nil {
		return nil, err
	}
	if _, err := s.sess.ExportCSV(a.Path, threshold); err != nil {
		return nil, err
	}
	return &statusResult{Status: "exported", Path: a.Path}, nil
}

func (s *Server) handleReportExportPDF(_ context.Context, args json.RawMessage) (interface{}, error) {
	a, threshold, err := s.metricsArgs(args, true)
	if err != nil {
		return nil, err
	}
	if _, err := s.sess.ExportPDF(a.Path, threshold); err != nil {
		return nil, err
	}
	return &statusResult{Status: "exported", Path: a.Path}, nil
}
