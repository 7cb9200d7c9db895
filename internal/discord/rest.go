package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/embedfixer/embedfixer/internal/components"
)

const apiBase = "https://discord.com/api/v10"

// File is a binary attachment uploaded alongside a component payload and
// referenced from it via the attachment://<name> pseudo-URL scheme.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type restClient struct {
	http  *http.Client
	token string
}

func newRESTClient(token string) *restClient {
	return &restClient{
		http:  &http.Client{Timeout: 30 * time.Second},
		token: token,
	}
}

// SendComponents dispatches a component payload as a reply to orig. With
// files present the request is multipart: a payload_json part plus one
// files[i] part per attachment.
func (m *Messenger) SendComponents(ctx context.Context, orig MessageRef, payload *components.MessagePayload, files []File) (MessageRef, error) {
	payload.MessageReference = &components.MessageReference{
		MessageID: orig.MessageID,
		ChannelID: orig.ChannelID,
	}
	payload.AllowedMentions = &components.AllowedMentions{RepliedUser: false}

	endpoint := fmt.Sprintf("%s/channels/%s/messages", apiBase, orig.ChannelID)

	var (
		req *http.Request
		err error
	)

	if len(files) == 0 {
		req, err = m.rest.jsonRequest(ctx, endpoint, payload)
	} else {
		req, err = m.rest.multipartRequest(ctx, endpoint, payload, files)
	}

	if err != nil {
		return MessageRef{}, err
	}

	resp, err := m.rest.http.Do(req)
	if err != nil {
		return MessageRef{}, fmt.Errorf("send components: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return MessageRef{}, fmt.Errorf("send components: HTTP %d: %s", resp.StatusCode, body)
	}

	var sent struct {
		ID string `json:"id"`
	}

	if err := json.Unmarshal(body, &sent); err != nil {
		return MessageRef{}, fmt.Errorf("decode send response: %w", err)
	}

	return MessageRef{GuildID: orig.GuildID, ChannelID: orig.ChannelID, MessageID: sent.ID}, nil
}

func (c *restClient) jsonRequest(ctx context.Context, endpoint string, payload *components.MessagePayload) (*http.Request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

func (c *restClient) multipartRequest(ctx context.Context, endpoint string, payload *components.MessagePayload, files []File) (*http.Request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	jsonHeader := textproto.MIMEHeader{}
	jsonHeader.Set("Content-Disposition", `form-data; name="payload_json"`)
	jsonHeader.Set("Content-Type", "application/json")

	jsonPart, err := writer.CreatePart(jsonHeader)
	if err != nil {
		return nil, err
	}

	if _, err := jsonPart.Write(data); err != nil {
		return nil, err
	}

	for i, file := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files[%d]"; filename="%s"`, i, file.Name))

		if file.ContentType != "" {
			header.Set("Content-Type", file.ContentType)
		}

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, err
		}

		if _, err := part.Write(file.Data); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return req, nil
}
