package device

import "testing"

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		action  ValidatedAction
		want    string
	}{
		{
			name:    "turn on from off",
			current: PowerStatus(false),
			action:  ValidatedAction{Action: ActionTurnOn},
			want:    "on",
		},
		{
			name:    "turn on already on",
			current: PowerStatus(true),
			action:  ValidatedAction{Action: ActionTurnOn},
			want:    "on",
		},
		{
			name:    "turn off from on",
			current: PowerStatus(true),
			action:  ValidatedAction{Action: ActionTurnOff},
			want:    "off",
		},
		{
			name:    "turn off already off",
			current: PowerStatus(false),
			action:  ValidatedAction{Action: ActionTurnOff},
			want:    "off",
		},
		{
			name:    "set temperature from off",
			current: PowerStatus(false),
			action:  ValidatedAction{Action: ActionSetTemperature, Value: 24, HasValue: true},
			want:    "24",
		},
		{
			name:    "set fractional temperature",
			current: PowerStatus(true),
			action:  ValidatedAction{Action: ActionSetTemperature, Value: 21.5, HasValue: true},
			want:    "21.5",
		},
		{
			name:    "set speed over previous setpoint",
			current: SetpointStatus(3),
			action:  ValidatedAction{Action: ActionSetSpeed, Value: 5, HasValue: true},
			want:    "5",
		},
		{
			name:    "turn off clears setpoint",
			current: SetpointStatus(24),
			action:  ValidatedAction{Action: ActionTurnOff},
			want:    "off",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.current, tt.action)
			if got.String() != tt.want {
				t.Errorf("Apply() = %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestApplyIdempotent(t *testing.T) {
	actions := []ValidatedAction{
		{Action: ActionTurnOn},
		{Action: ActionTurnOff},
		{Action: ActionSetTemperature, Value: 22, HasValue: true},
	}

	for _, va := range actions {
		once := Apply(DefaultStatus(), va)
		twice := Apply(once, va)
		if once != twice {
			t.Errorf("Apply(%s) not idempotent: %q then %q", va.Action, once, twice)
		}
	}
}

func TestApplyUnrecognisedKeepsCurrent(t *testing.T) {
	current := SetpointStatus(24)
	got := Apply(current, ValidatedAction{Action: Action("reboot")})
	if got != current {
		t.Errorf("Apply(unrecognised) = %q, want current %q", got, current)
	}
}
