package mqtt

import "testing"

func TestDeviceStateTopic(t *testing.T) {
	tests := []struct {
		deviceID string
		want     string
	}{
		{deviceID: "dev-1", want: "hearth/devices/dev-1/state"},
		{deviceID: "", want: ""},
	}

	for _, tt := range tests {
		if got := DeviceStateTopic(tt.deviceID); got != tt.want {
			t.Errorf("DeviceStateTopic(%q) = %q, want %q", tt.deviceID, got, tt.want)
		}
	}
}

func TestPublishRequiresConnection(t *testing.T) {
	p := &Publisher{logger: noopLogger{}}

	err := p.publish("hearth/devices/dev-1/state", []byte("{}"), true)
	if err != ErrNotConnected {
		t.Errorf("publish(disconnected) = %v, want ErrNotConnected", err)
	}

	if err := p.publish("", []byte("{}"), true); err != ErrInvalidTopic {
		t.Errorf("publish(empty topic) = %v, want ErrInvalidTopic", err)
	}
}
