package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagoodman/go-partybus"

	"github.com/guardian-sec/guardian/guardian/event"
)

func Test_postUIEventWriter_write(t *testing.T) {
	tests := []struct {
		name              string
		quiet             bool
		events            []partybus.Event
		wantStdout        string
		wantNotifications []string
		wantErr           require.ErrorAssertionFunc
	}{
		{
			name: "no events",
		},
		{
			name: "all events",
			events: []partybus.Event{
				{
					Type:  event.CLINotification,
					Value: "\n\n<my notification 1!!>\n\n",
				},
				{
					Type:  event.CLIReport,
					Value: "\n\n<report 1>\n\n",
				},
				{
					Type:  event.CLINotification,
					Value: "<notification 2>",
				},
				{
					Type:  event.CLIReport,
					Value: "<report 2>",
				},
			},
			wantStdout:        "\n\n<report 1>\n\n<report 2>\n",
			wantNotifications: []string{"<my notification 1!!>", "<notification 2>"},
		},
		{
			name:  "quiet only shows report",
			quiet: true,
			events: []partybus.Event{
				{
					Type:  event.CLINotification,
					Value: "<notification 1>",
				},
				{
					Type:  event.CLIReport,
					Value: "<report 1>",
				},
			},
			wantStdout: "<report 1>\n",
		},
		{
			name: "bad payloads are skipped",
			events: []partybus.Event{
				{
					Type:  event.CLIReport,
					Value: 42,
				},
				{
					Type:  event.CLIReport,
					Value: "<report 1>",
				},
			},
			wantStdout: "<report 1>\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr == nil {
				tt.wantErr = require.NoError
			}

			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}
			w := newPostUIEventWriter(stdout, stderr)

			tt.wantErr(t, w.write(tt.quiet, tt.events...))

			assert.Equal(t, tt.wantStdout, stdout.String())
			if len(tt.wantNotifications) == 0 {
				assert.Empty(t, stderr.String())
			}
			for _, n := range tt.wantNotifications {
				assert.Contains(t, stderr.String(), n)
			}
		})
	}
}
