package model

// DashboardCounts summarizes the live workload on the overview tab.
type DashboardCounts struct {
	PendingAlerts int `json:"pending_alerts"`
	TotalAlerts   int `json:"total_alerts"`
	ActiveTasks   int `json:"active_tasks"`
	Volunteers    int `json:"volunteers"`
}

type DashboardResponse struct {
	Tab    string           `json:"tab"`
	Counts *DashboardCounts `json:"counts,omitempty"`
	Alerts []*SOSAlert      `json:"alerts,omitempty"`
	Tasks  []*Task          `json:"tasks,omitempty"`
}
