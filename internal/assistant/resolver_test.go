package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/hearthwise/hearth-core/internal/device"
)

func floatPtr(v float64) *float64 { return &v }

// memoryRepo is an in-memory device.Repository for resolver tests.
type memoryRepo struct {
	devices []device.Device
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*device.Device, error) {
	for i := range m.devices {
		if m.devices[i].ID == id {
			return m.devices[i].Clone(), nil
		}
	}
	return nil, device.ErrDeviceNotFound
}

func (m *memoryRepo) ListByOwner(_ context.Context, ownerID string) ([]device.Device, error) {
	var out []device.Device
	for _, d := range m.devices {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListAll(_ context.Context) ([]device.Device, error) {
	return m.devices, nil
}

func (m *memoryRepo) Create(_ context.Context, d *device.Device) error {
	m.devices = append(m.devices, *d)
	return nil
}

func (m *memoryRepo) Update(context.Context, *device.Device) error { return nil }
func (m *memoryRepo) Delete(context.Context, string) error         { return nil }

// stubInterpreter returns a fixed guess or error.
type stubInterpreter struct {
	guess Guess
	err   error
}

func (s *stubInterpreter) Interpret(context.Context, string, Hints) (Guess, error) {
	return s.guess, s.err
}

func testRegistry() *device.Registry {
	repo := &memoryRepo{devices: []device.Device{
		{ID: "d1", Name: "Bedroom Fan", OwnerID: "u1", Type: device.DeviceTypeFan},
		{ID: "d2", Name: "AC", OwnerID: "u1", Type: device.DeviceTypeAC},
		{ID: "d3", Name: "AC", OwnerID: "u2", Type: device.DeviceTypeAC},
	}}
	return device.NewRegistry(repo)
}

func TestResolveBindsGuessToOwnedDevice(t *testing.T) {
	interp := &stubInterpreter{guess: Guess{DeviceName: "bedroom fan", Action: "turn_on"}}
	r := NewResolver(testRegistry(), interp)

	cmd, err := r.Resolve(context.Background(), "u1", "turn on the bedroom fan")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cmd.Device.ID != "d1" {
		t.Errorf("resolved device = %s, want d1", cmd.Device.ID)
	}
	if cmd.Action != device.ActionTurnOn {
		t.Errorf("action = %s, want turn_on", cmd.Action)
	}
	if cmd.Value != nil {
		t.Errorf("value = %v, want nil", cmd.Value)
	}
}

func TestResolveCarriesValue(t *testing.T) {
	interp := &stubInterpreter{guess: Guess{DeviceName: "AC", Action: "set_temperature", Value: floatPtr(22)}}
	r := NewResolver(testRegistry(), interp)

	cmd, err := r.Resolve(context.Background(), "u1", "set the ac to 22")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cmd.Value == nil || *cmd.Value != 22 {
		t.Errorf("value = %v, want 22", cmd.Value)
	}
}

func TestResolveUnknownDevice(t *testing.T) {
	interp := &stubInterpreter{guess: Guess{DeviceName: "Garage Door", Action: "turn_on"}}
	r := NewResolver(testRegistry(), interp)

	_, err := r.Resolve(context.Background(), "u1", "open the garage door")

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Resolve() = %v, want *NotFoundError", err)
	}
	if nf.Name != "Garage Door" {
		t.Errorf("NotFoundError.Name = %q, want Garage Door", nf.Name)
	}
}

func TestResolveOtherUsersDeviceIsNotFound(t *testing.T) {
	// u2 owns an AC too; u2 must never resolve against u1's fleet.
	interp := &stubInterpreter{guess: Guess{DeviceName: "Bedroom Fan", Action: "turn_on"}}
	r := NewResolver(testRegistry(), interp)

	_, err := r.Resolve(context.Background(), "u2", "turn on the bedroom fan")

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("Resolve(u2) = %v, want *NotFoundError", err)
	}
}

func TestResolveUnknownActionVerb(t *testing.T) {
	interp := &stubInterpreter{guess: Guess{DeviceName: "AC", Action: "set_brightness"}}
	r := NewResolver(testRegistry(), interp)

	_, err := r.Resolve(context.Background(), "u1", "make the ac brighter")
	if !errors.Is(err, device.ErrUnsupportedAction) {
		t.Errorf("Resolve() = %v, want ErrUnsupportedAction", err)
	}
}

func TestResolveInterpreterUnavailable(t *testing.T) {
	interp := &stubInterpreter{err: ErrUnavailable}
	r := NewResolver(testRegistry(), interp)

	_, err := r.Resolve(context.Background(), "u1", "turn on the bedroom fan")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Resolve() = %v, want ErrUnavailable", err)
	}
}

func TestResolveFallsBackToPhraseParser(t *testing.T) {
	interp := &stubInterpreter{err: ErrNoGuess}
	r := NewResolver(testRegistry(), interp)

	cmd, err := r.Resolve(context.Background(), "u1", "turn on the Bedroom Fan")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cmd.Device.ID != "d1" || cmd.Action != device.ActionTurnOn {
		t.Errorf("fallback resolved %s/%s, want d1/turn_on", cmd.Device.ID, cmd.Action)
	}
}

func TestResolveEmptyCommand(t *testing.T) {
	r := NewResolver(testRegistry(), &stubInterpreter{})

	_, err := r.Resolve(context.Background(), "u1", "   ")
	if !errors.Is(err, ErrNotUnderstood) {
		t.Errorf("Resolve(blank) = %v, want ErrNotUnderstood", err)
	}
}

func TestResolveNoInterpreterStillParsesPhrases(t *testing.T) {
	r := NewResolver(testRegistry(), nil)

	cmd, err := r.Resolve(context.Background(), "u1", "set the AC to 22")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cmd.Action != device.ActionSetTemperature || cmd.Value == nil || *cmd.Value != 22 {
		t.Errorf("Resolve() = %+v, want set_temperature 22", cmd)
	}
}

func TestParsePhrase(t *testing.T) {
	known := []string{"Bedroom Fan", "AC"}

	tests := []struct {
		text   string
		want   Guess
		wantOK bool
	}{
		{text: "turn on the bedroom fan", want: Guess{DeviceName: "Bedroom Fan", Action: "turn_on"}, wantOK: true},
		{text: "turn the AC off", want: Guess{DeviceName: "AC", Action: "turn_off"}, wantOK: true},
		{text: "switch off the ac", want: Guess{DeviceName: "AC", Action: "turn_off"}, wantOK: true},
		{text: "set the bedroom fan to 3", want: Guess{DeviceName: "Bedroom Fan", Action: "set_speed", Value: floatPtr(3)}, wantOK: true},
		{text: "set the ac to 21.5", want: Guess{DeviceName: "AC", Action: "set_temperature", Value: floatPtr(21.5)}, wantOK: true},
		{text: "make it cosy in here", wantOK: false},
		{text: "set the ac to tropical", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := parsePhrase(tt.text, known)
			if ok != tt.wantOK {
				t.Fatalf("parsePhrase(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.DeviceName != tt.want.DeviceName || got.Action != tt.want.Action {
				t.Errorf("parsePhrase(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
			if (got.Value == nil) != (tt.want.Value == nil) {
				t.Fatalf("value = %v, want %v", got.Value, tt.want.Value)
			}
			if got.Value != nil && *got.Value != *tt.want.Value {
				t.Errorf("value = %v, want %v", *got.Value, *tt.want.Value)
			}
		})
	}
}
