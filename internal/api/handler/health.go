package handler

import (
	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health endpoint
const Version = "0.1.0"

// SessionCounter reports how many sessions are live
type SessionCounter interface {
	Len() int
}

type HealthHandler struct {
	detector  string
	landmarks string
	sessions  SessionCounter
}

func NewHealthHandler(detector, landmarks string, sessions SessionCounter) *HealthHandler {
	return &HealthHandler{
		detector:  detector,
		landmarks: landmarks,
		sessions:  sessions,
	}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type ReadyResponse struct {
	Status    string `json:"status"`
	Detector  string `json:"detector"`
	Landmarks string `json:"landmarks"`
	Sessions  int    `json:"sessions"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	resp := ReadyResponse{
		Status:    "ready",
		Detector:  h.detector,
		Landmarks: h.landmarks,
	}
	if h.sessions != nil {
		resp.Sessions = h.sessions.Len()
	}
	return c.JSON(resp)
}
