package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/capitalize-ai/hr-service-desk/internal/model"
	"github.com/capitalize-ai/hr-service-desk/pkg/logger"
)

type scriptedRuntime struct {
	mu        sync.Mutex
	created   int
	createErr error
	sendErr   error
	reply     string
	sent      map[string][]string
}

func (r *scriptedRuntime) CreateThread(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return "", r.createErr
	}
	r.created++
	return fmt.Sprintf("thread-%d", r.created), nil
}

func (r *scriptedRuntime) Send(ctx context.Context, threadID, message string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent == nil {
		r.sent = make(map[string][]string)
	}
	r.sent[threadID] = append(r.sent[threadID], message)
	return r.reply, r.sendErr
}

func newTestFrontDesk(rt *scriptedRuntime) *FrontDesk {
	cache := NewThreadCache(ThreadCacheConfig{TTL: time.Hour})
	if rt == nil {
		return NewFrontDesk(nil, cache, logger.NewNop())
	}
	return NewFrontDesk(rt, cache, logger.NewNop())
}

func TestChatReusesThread(t *testing.T) {
	ctx := context.Background()
	rt := &scriptedRuntime{reply: "Claro.\n```json\n{\"requires_case\": false, \"case_type\": null}\n```"}
	fd := newTestFrontDesk(rt)

	first := fd.Chat(ctx, "emp-1", "hola")
	second := fd.Chat(ctx, "emp-1", "¿qué tal?")
	other := fd.Chat(ctx, "emp-2", "hola")

	assert.Equal(t, "thread-1", first.ThreadID)
	assert.Equal(t, first.ThreadID, second.ThreadID)
	assert.Equal(t, "thread-2", other.ThreadID)
	assert.Equal(t, 2, rt.created)
	assert.Equal(t, []string{"hola", "¿qué tal?"}, rt.sent["thread-1"])

	assert.Equal(t, "Claro.", first.Response)
	assert.False(t, first.RequiresCase)
	assert.False(t, first.Fallback)
}

func TestChatReadsDirective(t *testing.T) {
	rt := &scriptedRuntime{reply: "Voy a abrir un caso para tu certificado.\n```json\n{\"requires_case\": true, \"case_type\": \"generate_certificate\"}\n```"}
	fd := newTestFrontDesk(rt)

	reply := fd.Chat(context.Background(), "emp-1", "necesito un certificado")
	assert.Equal(t, "Voy a abrir un caso para tu certificado.", reply.Response)
	assert.True(t, reply.RequiresCase)
	assert.Equal(t, model.IntentGenerateCertificate, reply.CaseType)
}

func TestChatFallsBack(t *testing.T) {
	ctx := context.Background()

	t.Run("send failure keeps thread", func(t *testing.T) {
		fd := newTestFrontDesk(&scriptedRuntime{sendErr: errors.New("503")})
		reply := fd.Chat(ctx, "emp-1", "quiero ver mi nomina")
		assert.True(t, reply.Fallback)
		assert.True(t, reply.RequiresCase)
		assert.Equal(t, model.IntentGetPayrollDetails, reply.CaseType)
		assert.Equal(t, replyCaseNeeded, reply.Response)
		assert.Equal(t, "thread-1", reply.ThreadID)
	})

	t.Run("thread failure", func(t *testing.T) {
		fd := newTestFrontDesk(&scriptedRuntime{createErr: errors.New("quota")})
		reply := fd.Chat(ctx, "emp-1", "hola")
		assert.True(t, reply.Fallback)
		assert.False(t, reply.RequiresCase)
		assert.Empty(t, reply.CaseType)
		assert.Equal(t, replyGreeting, reply.Response)
		assert.Empty(t, reply.ThreadID)
		assert.Zero(t, fd.Threads().Len())
	})

	t.Run("offline", func(t *testing.T) {
		fd := newTestFrontDesk(nil)
		assert.Equal(t, replyQuestion, fd.Chat(ctx, "emp-1", "¿dónde está la oficina?").Response)
		assert.Equal(t, replyDefault, fd.Chat(ctx, "emp-1", "gracias").Response)

		reply := fd.Chat(ctx, "emp-1", "Mi SALDO de días")
		assert.True(t, reply.RequiresCase)
		assert.Equal(t, model.IntentCheckVacationBalance, reply.CaseType)
	})
}
