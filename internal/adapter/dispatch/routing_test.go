package dispatch

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/practika/practika/internal/domain"
	"github.com/practika/practika/internal/ports"
)

func testRoutingTable() RoutingTable {
	return NewRoutingTable(map[string]string{
		"gmb_post":     "gmb-post-jobs",
		"social_post":  "social-post-jobs",
		"reminder":     "reminder-jobs",
		"review_reply": "review-reply-jobs",
	}, "automation-jobs")
}

func TestRoutingTable_Resolve(t *testing.T) {
	routing := testRoutingTable()

	tests := []struct {
		workflowType domain.WorkflowType
		topic        string
		fallback     bool
	}{
		{domain.WorkflowTypeGMBPost, "gmb-post-jobs", false},
		{domain.WorkflowTypeSocialPost, "social-post-jobs", false},
		{domain.WorkflowTypeReminder, "reminder-jobs", false},
		{domain.WorkflowTypeReviewReply, "review-reply-jobs", false},
		{domain.WorkflowType("newsletter"), "automation-jobs", true},
	}

	for _, tt := range tests {
		topic, fallback := routing.Resolve(tt.workflowType)
		assert.Equal(t, tt.topic, topic, "topic for %s", tt.workflowType)
		assert.Equal(t, tt.fallback, fallback, "fallback for %s", tt.workflowType)
	}
}

func TestLogDispatcher_Dispatch(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	dispatcher := NewLogDispatcher(testRoutingTable(), log)

	ack, err := dispatcher.Dispatch(context.Background(), domain.WorkflowTypeReminder, ports.DispatchPayload{
		RunID:      "run-1",
		WorkflowID: "wf-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, "reminder-jobs", ack.Topic)
}

func TestLogDispatcher_DispatchUnmappedType(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	dispatcher := NewLogDispatcher(testRoutingTable(), log)

	ack, err := dispatcher.Dispatch(context.Background(), domain.WorkflowType("newsletter"), ports.DispatchPayload{RunID: "run-1"})

	assert.NoError(t, err)
	assert.Equal(t, "automation-jobs", ack.Topic)
}
