package sim

import "sync/atomic"

// FleetMetrics 记录编队运行期的关键指标（用于监控与调试）
type FleetMetrics struct {
	ResponsesProcessed int64 // 已处理的状态帧数
	ThrustsSent        int64 // 已发送的推进指令数（含冗余重发）
	BroadcastsSent     int64 // 已发送的广播指令数（含冗余重发）
	TargetsDetected    int64 // 自身探测到目标的次数
	SightingsFresh     int64 // 通过新鲜度过滤的中继目击数
	SightingsStale     int64 // 因过期被忽略的中继目击数
	SightingsDuplicate int64 // 识别为冗余重发的重复载荷数
	DecodeFailures     int64 // 载荷解码失败数（非致命）
	QueueWaitTimeouts  int64 // 队列等待超时次数
	UnitsStopped       int64 // 已终止的单元控制循环数
}

func (m *FleetMetrics) IncResponses() { atomic.AddInt64(&m.ResponsesProcessed, 1) }
func (m *FleetMetrics) AddThrusts(n int) {
	atomic.AddInt64(&m.ThrustsSent, int64(n))
}
func (m *FleetMetrics) AddBroadcasts(n int) {
	atomic.AddInt64(&m.BroadcastsSent, int64(n))
}
func (m *FleetMetrics) IncTargetsDetected() { atomic.AddInt64(&m.TargetsDetected, 1) }
func (m *FleetMetrics) IncSightingsFresh() { atomic.AddInt64(&m.SightingsFresh, 1) }
func (m *FleetMetrics) IncSightingsStale() { atomic.AddInt64(&m.SightingsStale, 1) }
func (m *FleetMetrics) IncSightingsDuplicate() {
	atomic.AddInt64(&m.SightingsDuplicate, 1)
}
func (m *FleetMetrics) IncDecodeFailures() { atomic.AddInt64(&m.DecodeFailures, 1) }
func (m *FleetMetrics) IncQueueWaitTimeouts() {
	atomic.AddInt64(&m.QueueWaitTimeouts, 1)
}
func (m *FleetMetrics) IncUnitsStopped() { atomic.AddInt64(&m.UnitsStopped, 1) }

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *FleetMetrics) Snapshot() map[string]any {
	return map[string]any{
		"responses_processed": atomic.LoadInt64(&m.ResponsesProcessed),
		"thrusts_sent":        atomic.LoadInt64(&m.ThrustsSent),
		"broadcasts_sent":     atomic.LoadInt64(&m.BroadcastsSent),
		"targets_detected":    atomic.LoadInt64(&m.TargetsDetected),
		"sightings_fresh":     atomic.LoadInt64(&m.SightingsFresh),
		"sightings_stale":     atomic.LoadInt64(&m.SightingsStale),
		"sightings_duplicate": atomic.LoadInt64(&m.SightingsDuplicate),
		"decode_failures":     atomic.LoadInt64(&m.DecodeFailures),
		"queue_wait_timeouts": atomic.LoadInt64(&m.QueueWaitTimeouts),
		"units_stopped":       atomic.LoadInt64(&m.UnitsStopped),
	}
}
