package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hearthwise/hearth-core/internal/assistant"
	"github.com/hearthwise/hearth-core/internal/device"
)

type commandRequest struct {
	Command string `json:"command"`
}

type commandResponse struct {
	Message           string   `json:"message"`
	DeviceName        string   `json:"device_name"`
	Action            string   `json:"action"`
	Value             *float64 `json:"value,omitempty"`
	NewStatus         string   `json:"new_status"`
	CommandUnderstood string   `json:"command_understood"`
}

// handleAssistantCommand resolves free-form text into a device action and
// dispatches it.
//
// The error shape depends on how far the command got:
//   - not understood: {error}
//   - device not found: {error, suggestion}
//   - found but rejected (range, action): {error, command, device}
//   - interpreter down: {error} with 503
func (s *Server) handleAssistantCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Command == "" {
		writeBadRequest(w, "Missing command")
		return
	}

	result, err := s.dispatcher.Command(r.Context(), userIDFrom(r), req.Command)
	if err != nil {
		s.writeCommandError(w, req.Command, err)
		return
	}

	writeJSON(w, http.StatusOK, commandResponse{
		Message:           fmt.Sprintf("%s updated successfully", result.Device.Name),
		DeviceName:        result.Device.Name,
		Action:            string(result.Action),
		Value:             result.Value,
		NewStatus:         result.NewStatus.String(),
		CommandUnderstood: req.Command,
	})
}

func (s *Server) writeCommandError(w http.ResponseWriter, command string, err error) {
	var notFound *assistant.NotFoundError
	var oor *device.OutOfRangeError

	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":      fmt.Sprintf("Device '%s' not found", notFound.Name),
			"suggestion": "Please check device name or add it first",
		})

	case errors.As(err, &oor):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   oor.Error(),
			"command": command,
			"device":  oor.Device,
		})

	case errors.Is(err, device.ErrUnsupportedAction), errors.Is(err, device.ErrMissingValue):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "Invalid action or missing value",
			"command": command,
		})

	case errors.Is(err, assistant.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "assistant unavailable, please try again later")

	case errors.Is(err, assistant.ErrNotUnderstood):
		writeBadRequest(w, "Could not understand command. Please try again.")

	case errors.Is(err, device.ErrDeviceNotFound):
		writeNotFound(w, "device not found")

	default:
		s.logger.Error("dispatching command", "error", err)
		writeInternalError(w, "could not process command")
	}
}
