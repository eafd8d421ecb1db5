package main

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Waziup/single_chan_radio/lora"
)

type stubRadio struct {
	mu      sync.Mutex
	sent    []string
	inbox   []string
	sendErr error
}

func (s *stubRadio) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, string(data))
	return nil
}

func (s *stubRadio) Receive() (*lora.RxPacket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.inbox) == 0 {
		return nil, nil
	}
	pkt := &lora.RxPacket{Data: []byte(s.inbox[0])}
	s.inbox = s.inbox[1:]
	return pkt, nil
}

type syncBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (w *syncBuffer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.Write(p)
}

func (w *syncBuffer) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.String()
}

func TestChatSendsLines(t *testing.T) {
	r := &stubRadio{}
	var out syncBuffer
	err := chat(zaptest.NewLogger(t), r, strings.NewReader("bob\nhello\nbye"), &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"[  bob] hello", "[  bob] bye"}, r.sent)
	assert.True(t, strings.HasPrefix(out.String(), "Your name: "))
}

func TestChatSendError(t *testing.T) {
	fail := errors.New("tx timeout")
	r := &stubRadio{sendErr: fail}
	err := chat(zaptest.NewLogger(t), r, strings.NewReader("ann\nhi\n"), &syncBuffer{})
	assert.Equal(t, fail, err)
}
