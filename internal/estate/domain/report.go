package domain

// PropertyCounts tallies properties by lifecycle status.
type PropertyCounts struct {
	Total   int64 `json:"total"`
	Pending int64 `json:"pending"`
	Live    int64 `json:"live"`
	Sold    int64 `json:"sold"`
}

// Add counts n properties in status.
func (c *PropertyCounts) Add(status PropertyStatus, n int64) {
	c.Total += n
	switch status {
	case StatusPending:
		c.Pending += n
	case StatusLive:
		c.Live += n
	case StatusSold:
		c.Sold += n
	}
}

// AgentProfile is the part of an agent account shown in reports.
type AgentProfile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

type AgentReport struct {
	Agent      AgentProfile   `json:"agent"`
	Properties PropertyCounts `json:"properties"`
}

// AdminReport is the administrator dashboard: agent totals, property totals
// and the properties verified by each agent, agents without any included.
type AdminReport struct {
	Agents        int64          `json:"agents"`
	PendingAgents int64          `json:"pending_agents"`
	Properties    PropertyCounts `json:"properties"`
	ByAgent       []AgentReport  `json:"by_agent"`
}

// AgentStats is an agent's dashboard.
type AgentStats struct {
	Assigned     PropertyCounts `json:"assigned"`
	PendingQueue int64          `json:"pending_queue"`
}
