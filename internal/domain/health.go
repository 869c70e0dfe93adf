package domain

// HealthCheckResponse is returned by the backend /health endpoint
type HealthCheckResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
}

// RootInfo is returned by the backend root endpoint
type RootInfo struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
}
