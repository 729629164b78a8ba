package webhook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnalizatorMP/sms-analizator.service/internal/webhook"
)

func TestExtractEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		want    *webhook.InboundEvent
		wantErr error
	}{
		{
			name: "fields at document root",
			body: `{"caller_id":"79991112233","caller_did":"79990000000","text":"hi"}`,
			want: &webhook.InboundEvent{
				CallerID:     "79991112233",
				CalledNumber: "79990000000",
				Text:         "hi",
				CallerName:   webhook.NotSpecified,
			},
		},
		{
			name: "fields nested under result",
			body: `{"result":{"caller_id":"abc","caller_did":"123","text":"msg"}}`,
			want: &webhook.InboundEvent{
				CallerID:     "abc",
				CalledNumber: "123",
				Text:         "msg",
				CallerName:   webhook.NotSpecified,
			},
		},
		{
			name: "fields nested under data",
			body: `{"data":{"caller_id":"abc","caller_did":"123","text":"msg"}}`,
			want: &webhook.InboundEvent{
				CallerID:     "abc",
				CalledNumber: "123",
				Text:         "msg",
				CallerName:   webhook.NotSpecified,
			},
		},
		{
			name: "root takes precedence over result and data",
			body: `{"caller_id":"root","caller_did":"1","text":"r",
				"result":{"caller_id":"res","caller_did":"2","text":"x"},
				"data":{"caller_id":"dat","caller_did":"3","text":"y"}}`,
			want: &webhook.InboundEvent{
				CallerID:     "root",
				CalledNumber: "1",
				Text:         "r",
				CallerName:   webhook.NotSpecified,
			},
		},
		{
			name: "result takes precedence over data",
			body: `{"result":{"caller_id":"res","caller_did":"2","text":"x"},
				"data":{"caller_id":"dat","caller_did":"3","text":"y"}}`,
			want: &webhook.InboundEvent{
				CallerID:     "res",
				CalledNumber: "2",
				Text:         "x",
				CallerName:   webhook.NotSpecified,
			},
		},
		{
			name: "incomplete root falls through to result",
			body: `{"caller_id":"root",
				"result":{"caller_id":"res","caller_did":"2","text":"x"}}`,
			want: &webhook.InboundEvent{
				CallerID:     "res",
				CalledNumber: "2",
				Text:         "x",
				CallerName:   webhook.NotSpecified,
			},
		},
		{
			name: "optional caller name is carried",
			body: `{"caller_id":"a","caller_did":"b","text":"c","caller_name":"Ivan"}`,
			want: &webhook.InboundEvent{
				CallerID:     "a",
				CalledNumber: "b",
				Text:         "c",
				CallerName:   "Ivan",
			},
		},
		{
			name: "empty required field values still qualify",
			body: `{"caller_id":"","caller_did":"","text":""}`,
			want: &webhook.InboundEvent{
				CallerName: webhook.NotSpecified,
			},
		},
		{
			name:    "required field missing at every location",
			body:    `{"caller_id":"a","text":"c","result":{"caller_did":"b"},"data":{"text":"c"}}`,
			wantErr: webhook.ErrUnknownShape,
		},
		{
			name:    "empty object",
			body:    `{}`,
			wantErr: webhook.ErrUnknownShape,
		},
		{
			name:    "JSON array is not a recognized shape",
			body:    `[1,2,3]`,
			wantErr: webhook.ErrUnknownShape,
		},
		{
			name:    "not JSON at all",
			body:    `not json`,
			wantErr: webhook.ErrInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := webhook.ExtractEvent([]byte(tt.body))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
