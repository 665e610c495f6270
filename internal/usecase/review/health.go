package review

import (
	"context"
	"errors"
)

const (
	serviceStatusOnline  = "online"
	serviceStatusOffline = "offline"
)

type ServiceHealth struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	URL    string `json:"url,omitempty"`
	Error  string `json:"error,omitempty"`
}

type SystemHealthResult struct {
	Healthy  bool            `json:"healthy"`
	Services []ServiceHealth `json:"services"`
}

// SystemHealth probes each external collaborator independently; one
// offline service never fails the whole endpoint.
func (s *Service) SystemHealth(ctx context.Context) (SystemHealthResult, error) {
	if ctx == nil {
		return SystemHealthResult{}, errors.New("context is required")
	}

	result := SystemHealthResult{Healthy: true}

	probes := []struct {
		name string
		url  string
		ping func(context.Context) error
	}{
		{name: "database", ping: s.submissions.Ping},
		{name: "ollama", url: s.chat.BaseURL(), ping: s.chat.Ping},
		{name: "document_store", url: s.docs.Location(), ping: s.docs.Ping},
	}

	for _, probe := range probes {
		health := ServiceHealth{Name: probe.name, Status: serviceStatusOnline, URL: probe.url}
		if err := probe.ping(ctx); err != nil {
			health.Status = serviceStatusOffline
			health.Error = err.Error()
			result.Healthy = false
		}
		result.Services = append(result.Services, health)
	}

	return result, nil
}
