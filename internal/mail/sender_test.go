package mail

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mominaamjad/pixel-notes/internal/config"
)

func TestSMTPSender_BuildMessage(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{
		From:     "noreply@pixelnotes.com",
		FromName: "Pixel Notes",
	})

	msg := s.buildMessage("momina@example.com", "Reset", "click the link")

	require.Contains(t, msg, "From: Pixel Notes <noreply@pixelnotes.com>\r\n")
	require.Contains(t, msg, "To: momina@example.com\r\n")
	require.Contains(t, msg, "Subject: Reset\r\n")
	require.Contains(t, msg, "Content-Type: text/plain; charset=UTF-8\r\n")

	// Headers and body separated by a blank line.
	parts := strings.SplitN(msg, "\r\n\r\n", 2)
	require.Len(t, parts, 2)
	require.Contains(t, parts[1], "click the link")
}

func TestSMTPSender_BuildMessage_DefaultFromName(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{From: "noreply@pixelnotes.com"})

	msg := s.buildMessage("a@b.com", "Hi", "body")
	require.Contains(t, msg, "From: Pixel Notes <noreply@pixelnotes.com>")
}

func TestSMTPSender_Send_Unreachable(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{Host: "127.0.0.1", Port: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Send(ctx, "a@b.com", "Hi", "body")
	require.Error(t, err)
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	s := NewLogSender(logger)
	require.NoError(t,
		s.Send(context.Background(), "momina@example.com", "Reset", "token-body"))

	out := buf.String()
	require.Contains(t, out, "momina@example.com")
	require.Contains(t, out, "token-body")
}
