package sdk_test

import (
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/academictechnexus/mascot-admin/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSDKClient(t *testing.T, handler http.HandlerFunc) *sdk.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return sdk.NewClient(sdk.NewGateway(srv.URL, sdk.NewMemoryStore("t1")))
}

func TestClient_ListSites(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"id":7,"name":"Acme","domain":"acme.test","plan":"pro","usage_today":12,"daily_quota":100}]`},
		{"envelope", `{"sites":[{"id":"7","name":"Acme","domain":"acme.test","plan":"pro","usage_today":12,"daily_quota":100}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newSDKClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/admin/sites", r.URL.Path)
				writeJSON(w, http.StatusOK, tt.body)
			})

			sites, err := client.ListSites(testContext(t))
			require.NoError(t, err)
			require.Len(t, sites, 1)
			assert.Equal(t, sdk.ID("7"), sites[0].ID)
			assert.Equal(t, "acme.test", sites[0].Domain)
			assert.Equal(t, 12, sites[0].UsageToday)
			assert.Equal(t, 100, sites[0].DailyQuota)
		})
	}
}

func TestClient_SiteAIDefaults(t *testing.T) {
	client := newSDKClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/sites/7/ai", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"ai_enabled":false,"system_prompt":"Be brief"}`)
	})

	ai, err := client.GetSiteAI(testContext(t), "7")
	require.NoError(t, err)
	assert.False(t, ai.AIEnabled)
	assert.True(t, ai.LearningEnabled)
	assert.Equal(t, sdk.DefaultTemperature, ai.Temperature)
	assert.Equal(t, sdk.DefaultMaxTokens, ai.MaxTokens)
	assert.Equal(t, "Be brief", ai.SystemPrompt)
}

func TestClient_UpdateSiteAI(t *testing.T) {
	var got map[string]any
	client := newSDKClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/admin/sites/7/ai", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, `{"ok":true}`)
	})

	err := client.UpdateSiteAI(testContext(t), "7", sdk.AISettings{AIEnabled: true, Temperature: 0.2, MaxTokens: 200})
	require.NoError(t, err)
	assert.Equal(t, true, got["ai_enabled"])
	assert.Equal(t, 0.2, got["temperature"])
	assert.Equal(t, float64(200), got["max_tokens"])

	assert.Error(t, client.UpdateSiteAI(testContext(t), "", sdk.AISettings{}))
}

func TestClient_Settings(t *testing.T) {
	var put sdk.Settings
	client := newSDKClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/settings", r.URL.Path)
		if r.Method == http.MethodPut {
			_ = json.NewDecoder(r.Body).Decode(&put)
			writeJSON(w, http.StatusOK, `{"success":true}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"ai_enabled":true,"learning_enabled":false,"temperature":0.6,"max_tokens":500,"demo_days":7,"demo_daily_quota":20}`)
	})

	settings, err := client.GetSettings(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 7, settings.DemoDays)

	require.NoError(t, settings.SetField("learning_enabled", "true"))
	require.NoError(t, client.UpdateSettings(testContext(t), *settings))
	assert.True(t, put.LearningEnabled)
	assert.Equal(t, 20, put.DemoDailyQuota)
}

func TestSettingsSetField(t *testing.T) {
	var s sdk.Settings
	require.NoError(t, s.SetField("temperature", "0.9"))
	require.NoError(t, s.SetField("MAX_TOKENS", "750"))
	require.NoError(t, s.SetField("blocked_topics", "politics,medical"))
	assert.Equal(t, 0.9, s.Temperature)
	assert.Equal(t, 750, s.MaxTokens)
	assert.Equal(t, "politics,medical", s.BlockedTopics)

	assert.Error(t, s.SetField("temperature", "3"))
	assert.Error(t, s.SetField("ai_enabled", "maybe"))
	assert.Error(t, s.SetField("colour", "blue"))

	var ai sdk.AISettings
	require.NoError(t, ai.SetField("ai_enabled", "true"))
	assert.True(t, ai.AIEnabled)
	assert.Error(t, ai.SetField("demo_days", "3"))
}

func TestClient_Conversations(t *testing.T) {
	client := newSDKClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/conversations":
			writeJSON(w, http.StatusOK, `[{"id":42,"domain":"acme.test","session_id":"s-1"}]`)
		case "/admin/conversations/42/messages":
			writeJSON(w, http.StatusOK, `[{"role":"user","text":"hello"},{"role":"assistant","text":"hi!"}]`)
		default:
			writeJSON(w, http.StatusNotFound, `{"error":"not_found"}`)
		}
	})

	convos, err := client.ListConversations(testContext(t))
	require.NoError(t, err)
	require.Len(t, convos, 1)
	assert.Equal(t, "s-1", convos[0].SessionID)

	msgs, err := client.ListMessages(testContext(t), convos[0].ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "assistant", msgs[1].Role)
}

func TestClient_SetupAndUpload(t *testing.T) {
	var answers map[string]string
	var names []string
	client := newSDKClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/sites/7/setup":
			_ = json.NewDecoder(r.Body).Decode(&answers)
		case "/admin/sites/7/docs":
			_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			require.NoError(t, err)
			mr := multipart.NewReader(r.Body, params["boundary"])
			for {
				part, err := mr.NextPart()
				if err == io.EOF {
					break
				}
				require.NoError(t, err)
				assert.Equal(t, "files", part.FormName())
				names = append(names, part.FileName())
			}
		}
		writeJSON(w, http.StatusOK, `{"success":true}`)
	})

	require.NoError(t, client.SaveSiteSetup(testContext(t), "7", map[string]string{"business_name": "Acme"}))
	assert.Equal(t, "Acme", answers["business_name"])

	files := []sdk.UploadFile{
		{Name: "faq.txt", Reader: strings.NewReader("faq")},
		{Name: "prices.txt", Reader: strings.NewReader("prices")},
	}
	require.NoError(t, client.UploadSiteDocs(testContext(t), "7", files))
	assert.Equal(t, []string{"faq.txt", "prices.txt"}, names)
}

func TestMultipartBodyLimits(t *testing.T) {
	_, err := sdk.MultipartBody("files", nil)
	assert.Error(t, err)

	four := make([]sdk.UploadFile, sdk.MaxUploadFiles+1)
	for i := range four {
		four[i] = sdk.UploadFile{Name: "f.txt", Reader: strings.NewReader("x")}
	}
	_, err = sdk.MultipartBody("files", four)
	assert.Error(t, err)
}

func TestClient_PublicSetupNeedsNoSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "/client/setup/abc", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"site":{"id":7,"name":"Acme","domain":"acme.test","setup_completed":true}}`)
	}))
	t.Cleanup(srv.Close)

	client := sdk.NewClient(sdk.NewGateway(srv.URL, sdk.NewMemoryStore("")))
	info, err := client.GetClientSetupInfo(testContext(t), "abc")
	require.NoError(t, err)
	assert.True(t, info.Site.SetupCompleted)
	assert.Equal(t, "Acme", info.Site.Name)
}

func TestIDUnmarshal(t *testing.T) {
	var ids []sdk.ID
	require.NoError(t, json.Unmarshal([]byte(`[1, "abc", null, 12345678901]`), &ids))
	assert.Equal(t, []sdk.ID{"1", "abc", "", "12345678901"}, ids)

	var bad sdk.ID
	assert.Error(t, json.Unmarshal([]byte(`{}`), &bad))
}
