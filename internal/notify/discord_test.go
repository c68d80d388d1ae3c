package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_EmbedShape(t *testing.T) {
	var payloads []discordPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var p discordPayload
		require.NoError(t, json.Unmarshal(body, &p))
		payloads = append(payloads, p)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := NewDiscordWebhook(server.URL, "")
	err := n.Send(context.Background(), Message{
		Title: "APK Update Check",
		Body:  "New APK version available: 1.0.6.apk",
		Fields: []Field{
			{Name: "Scraped version", Value: "1.0.6", Inline: true},
		},
	})
	require.NoError(t, err)

	require.Len(t, payloads, 1)
	require.Len(t, payloads[0].Embeds, 1)
	embed := payloads[0].Embeds[0]
	assert.Equal(t, "APK Update Check", embed.Title)
	assert.Equal(t, "New APK version available: 1.0.6.apk", embed.Description)
	assert.Equal(t, ColorGreen, embed.Color)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "Scraped version", embed.Fields[0].Name)
	assert.True(t, embed.Fields[0].Inline)
}

func TestSend_MentionPrecedesEmbed(t *testing.T) {
	var payloads []discordPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var p discordPayload
		require.NoError(t, json.Unmarshal(body, &p))
		payloads = append(payloads, p)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := NewDiscordWebhook(server.URL, "123456789")
	require.NoError(t, n.Send(context.Background(), Message{Title: "t", Body: "b"}))

	require.Len(t, payloads, 2)
	assert.Equal(t, "<@123456789>", payloads[0].Content)
	assert.Empty(t, payloads[0].Embeds)
	assert.Len(t, payloads[1].Embeds, 1)
}

func TestSend_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	n := NewDiscordWebhook(server.URL, "")
	err := n.Send(context.Background(), Message{Title: "t", Body: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestSend_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	server.Close()

	n := NewDiscordWebhook(server.URL, "")
	assert.Error(t, n.Send(context.Background(), Message{Title: "t", Body: "b"}))
}

func TestSend_DefaultColorAndEmptyFields(t *testing.T) {
	var got discordPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := NewDiscordWebhook(server.URL, "")
	require.NoError(t, n.Send(context.Background(), Message{Title: "t", Body: "b"}))

	require.Len(t, got.Embeds, 1)
	assert.Equal(t, ColorGreen, got.Embeds[0].Color)
	assert.NotNil(t, got.Embeds[0].Fields)
}
