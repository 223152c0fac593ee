package sim

import (
	"encoding/json"
	"net/http"
)

// HandleAdminConfig 提供控制参数的读取与热更新
// GET /admin/config  返回当前参数
// POST /admin/config 以 JSON 载荷更新部分字段
func (f *Fleet) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	type cfg struct {
		BroadcastRedundancy *int   `json:"broadcastRedundancy,omitempty"`
		ThrustRedundancy    *int   `json:"thrustRedundancy,omitempty"`
		FreshnessWindowMs   *int64 `json:"freshnessWindowMs,omitempty"`
		QueueWaitMs         *int64 `json:"queueWaitMs,omitempty"`
	}

	t := f.Tuning()
	switch r.Method {
	case http.MethodGet:
		br := t.BroadcastRedundancy()
		tr := t.ThrustRedundancy()
		fw := int64(t.FreshnessWindow() * 1000)
		qw := t.QueueWait()
		cur := cfg{
			BroadcastRedundancy: &br,
			ThrustRedundancy:    &tr,
			FreshnessWindowMs:   &fw,
			QueueWaitMs:         &qw,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cur)
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.BroadcastRedundancy != nil {
			t.SetBroadcastRedundancy(*body.BroadcastRedundancy)
		}
		if body.ThrustRedundancy != nil {
			t.SetThrustRedundancy(*body.ThrustRedundancy)
		}
		if body.FreshnessWindowMs != nil {
			t.SetFreshnessWindowMs(*body.FreshnessWindowMs)
		}
		if body.QueueWaitMs != nil {
			t.SetQueueWaitMs(*body.QueueWaitMs)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		Log.Infof("tuning updated: broadcastRedundancy=%d thrustRedundancy=%d freshnessWindowMs=%.0f queueWaitMs=%d",
			t.BroadcastRedundancy(), t.ThrustRedundancy(), t.FreshnessWindow()*1000, t.QueueWait())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出编队运行指标
// GET /metrics
func (f *Fleet) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"simulation": f.simID,
		"metrics":    f.Metrics().Snapshot(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
