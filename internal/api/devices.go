package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthwise/hearth-core/internal/device"
)

type deviceRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type controlRequest struct {
	Action string `json:"action"`
	Value  any    `json:"value"`
}

type controlResponse struct {
	Message    string `json:"message"`
	DeviceName string `json:"device_name"`
	NewStatus  string `json:"new_status"`
}

// handleListDevices returns the caller's devices.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.registry.ListOwned(r.Context(), userIDFrom(r))
	if err != nil {
		s.logger.Error("listing devices", "error", err)
		writeInternalError(w, "could not list devices")
		return
	}
	if devices == nil {
		devices = []device.Device{}
	}
	writeJSON(w, http.StatusOK, devices)
}

// handleCreateDevice adds a device to the caller's fleet.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	deviceType, err := device.ParseDeviceType(req.Type)
	if err != nil {
		writeBadRequest(w, "unknown device type: "+req.Type)
		return
	}

	d := &device.Device{
		Name:    req.Name,
		OwnerID: userIDFrom(r),
		Type:    deviceType,
	}
	if err := s.registry.CreateDevice(r.Context(), d); err != nil {
		switch {
		case errors.Is(err, device.ErrInvalidName):
			writeBadRequest(w, "device name must be 1-100 characters")
		case errors.Is(err, device.ErrDeviceExists):
			writeError(w, http.StatusConflict, "a device with that name already exists")
		default:
			s.logger.Error("creating device", "error", err)
			writeInternalError(w, "could not create device")
		}
		return
	}

	writeJSON(w, http.StatusCreated, d)
}

// handleGetDevice returns one owned device.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	d, err := s.registry.GetOwned(r.Context(), userIDFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("getting device", "error", err)
		writeInternalError(w, "could not load device")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleUpdateDevice renames or retypes an owned device.
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	deviceType, err := device.ParseDeviceType(req.Type)
	if err != nil {
		writeBadRequest(w, "unknown device type: "+req.Type)
		return
	}

	d := &device.Device{
		ID:   chi.URLParam(r, "id"),
		Name: req.Name,
		Type: deviceType,
	}
	if err := s.registry.UpdateDevice(r.Context(), userIDFrom(r), d); err != nil {
		switch {
		case errors.Is(err, device.ErrDeviceNotFound):
			writeNotFound(w, "device not found")
		case errors.Is(err, device.ErrInvalidName):
			writeBadRequest(w, "device name must be 1-100 characters")
		case errors.Is(err, device.ErrDeviceExists):
			writeError(w, http.StatusConflict, "a device with that name already exists")
		default:
			s.logger.Error("updating device", "error", err)
			writeInternalError(w, "could not update device")
		}
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// handleDeleteDevice removes an owned device and its activity entries.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	err := s.registry.DeleteDevice(r.Context(), userIDFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("deleting device", "error", err)
		writeInternalError(w, "could not delete device")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleControlDevice dispatches a direct action against an owned device.
func (s *Server) handleControlDevice(w http.ResponseWriter, r *http.Request) {
	var req controlRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	action, err := device.ParseAction(req.Action)
	if err != nil {
		writeBadRequest(w, "Invalid action or missing value")
		return
	}

	value, err := device.CoerceValue(req.Value)
	if err != nil {
		writeBadRequest(w, "Invalid value: must be a number")
		return
	}

	result, err := s.dispatcher.Control(r.Context(), userIDFrom(r), chi.URLParam(r, "id"), action, value)
	if err != nil {
		s.writeControlError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, controlResponse{
		Message:    result.Message,
		DeviceName: result.Device.Name,
		NewStatus:  result.NewStatus.String(),
	})
}

// writeControlError maps dispatch failures onto HTTP responses. Out-of-range
// messages pass through verbatim; their phrasing is a contract with clients.
func (s *Server) writeControlError(w http.ResponseWriter, err error) {
	var oor *device.OutOfRangeError

	switch {
	case errors.Is(err, device.ErrDeviceNotFound):
		writeNotFound(w, "device not found")
	case errors.As(err, &oor):
		writeBadRequest(w, oor.Error())
	case errors.Is(err, device.ErrUnsupportedAction), errors.Is(err, device.ErrMissingValue):
		writeBadRequest(w, "Invalid action or missing value")
	case errors.Is(err, device.ErrInvalidValueType):
		writeBadRequest(w, "Invalid value: must be a number")
	default:
		s.logger.Error("dispatching action", "error", err)
		writeInternalError(w, "could not dispatch action")
	}
}
