package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"email-classifier/internal/ai"
	"email-classifier/internal/extract/extracttest"
	"email-classifier/internal/heuristic"
	"email-classifier/internal/logger"
	"email-classifier/internal/model"
	"email-classifier/internal/repository/filesystem"
	"email-classifier/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	echo    *echo.Echo
	handler *EmailHandler
	root    string
}

func newTestEnv(t *testing.T, aiClient service.AIClient) *testEnv {
	root := t.TempDir()
	e := echo.New()
	classifier := service.NewClassificationService(aiClient, logger.Nop())
	emailService := service.NewEmailService(classifier, filesystem.NewFileEmailRepository(root), logger.Nop())
	return &testEnv{echo: e, handler: NewEmailHandler(emailService, e.Logger), root: root}
}

func formRequest(content string) *http.Request {
	form := url.Values{}
	form.Set("email_content", content)
	req := httptest.NewRequest(http.MethodPost, "/api/classify_text", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func fileRequest(t *testing.T, filename, contentType string, data []byte) *http.Request {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/classify_file", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRoot(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, env.handler.Root(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec)["message"], "/api/classify_text")
}

func TestClassifyTextFallback(t *testing.T) {
	env := newTestEnv(t, &ai.MockAIClient{Disabled: true})
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(formRequest("Preciso de ajuda com um erro no sistema"), rec)

	require.NoError(t, env.handler.ClassifyText(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Produtivo", body["categoria"])
	assert.Equal(t, heuristic.ProductiveReply, body["resposta_sugerida"])

	entries, err := os.ReadDir(filepath.Join(env.root, "produtivo"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(env.root, "produtivo", entries[0].Name()))
	require.NoError(t, err)
	var stored model.StoredEmail
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, map[string]interface{}{"source": "text_form"}, stored.Metadata)
}

func TestClassifyTextRemote(t *testing.T) {
	mockAIClient := ai.NewMockAIClient()
	env := newTestEnv(t, mockAIClient)
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(formRequest("Bom dia, tudo certo por aí?"), rec)

	require.NoError(t, env.handler.ClassifyText(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Produtivo", body["categoria"])
	assert.Equal(t, "Resposta gerada pelo modelo.", body["resposta_sugerida"])
	assert.Equal(t, 1, mockAIClient.Calls())
}

func TestClassifyTextInvalid(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, content := range []string{"", "hi"} {
		rec := httptest.NewRecorder()
		c := env.echo.NewContext(formRequest(content), rec)

		require.NoError(t, env.handler.ClassifyText(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "content %q", content)
		assert.NotEmpty(t, decode(t, rec)["error"])
	}

	entries, _ := os.ReadDir(filepath.Join(env.root, "produtivo"))
	assert.Empty(t, entries)
}

func TestClassifyTextStorageFailureStillAnswers(t *testing.T) {
	root := filepath.Join(t.TempDir(), "emails")
	require.NoError(t, os.WriteFile(root, []byte("not a directory"), 0o644))

	e := echo.New()
	classifier := service.NewClassificationService(nil, logger.Nop())
	emailService := service.NewEmailService(classifier, filesystem.NewFileEmailRepository(root), logger.Nop())
	h := NewEmailHandler(emailService, e.Logger)

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest("Feliz natal e um ótimo ano novo para todos!"), rec)

	require.NoError(t, h.ClassifyText(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Improdutivo", decode(t, rec)["categoria"])
}

func TestClassifyFileText(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := httptest.NewRecorder()
	req := fileRequest(t, "pedido.txt", "text/plain", []byte("Segue o pedido de compra número 42, aguardo retorno."))
	c := env.echo.NewContext(req, rec)

	require.NoError(t, env.handler.ClassifyFile(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Produtivo", decode(t, rec)["categoria"])

	emails, err := filesystem.NewFileEmailRepository(env.root).List(req.Context(), "produtivo")
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, map[string]interface{}{"source": "file", "filename": "pedido.txt"}, emails[0].Metadata)
}

func TestClassifyFilePDF(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := httptest.NewRecorder()
	req := fileRequest(t, "chamado.pdf", "application/pdf", extracttest.PDF("Preciso de ajuda", "com a fatura"))
	c := env.echo.NewContext(req, rec)

	require.NoError(t, env.handler.ClassifyFile(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Produtivo", body["categoria"])
	assert.Equal(t, heuristic.ProductiveReply, body["resposta_sugerida"])

	emails, err := filesystem.NewFileEmailRepository(env.root).List(req.Context(), "produtivo")
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, "Preciso de ajuda\ncom a fatura", emails[0].Text)
	assert.Equal(t, map[string]interface{}{"source": "file", "filename": "chamado.pdf"}, emails[0].Metadata)
}

func TestClassifyFileRejectsUnsupportedType(t *testing.T) {
	mockAIClient := ai.NewMockAIClient()
	env := newTestEnv(t, mockAIClient)
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(fileRequest(t, "email.json", "application/json", []byte(`{"texto": "Preciso de ajuda"}`)), rec)

	require.NoError(t, env.handler.ClassifyFile(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Apenas .txt e .pdf são permitidos.", decode(t, rec)["error"])
	assert.Equal(t, 0, mockAIClient.Calls())
}

func TestClassifyFileEmpty(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(fileRequest(t, "vazio.txt", "text/plain", []byte("   \n ")), rec)

	require.NoError(t, env.handler.ClassifyFile(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Arquivo sem texto extraível.", decode(t, rec)["error"])
}

func TestClassifyFileBrokenPDF(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(fileRequest(t, "quebrado.pdf", "application/pdf", []byte("not really a pdf")), rec)

	require.NoError(t, env.handler.ClassifyFile(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "Erro ao processar arquivo")
}

func TestClassifyFileMissing(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(httptest.NewRequest(http.MethodPost, "/api/classify_file", nil), rec)

	require.NoError(t, env.handler.ClassifyFile(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEmails(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, content := range []string{"Preciso de ajuda com um erro no sistema", "Feliz natal e um ótimo ano novo para todos!"} {
		c := env.echo.NewContext(formRequest(content), httptest.NewRecorder())
		require.NoError(t, env.handler.ClassifyText(c))
	}

	tests := []struct {
		query string
		count int
	}{
		{"", 2},
		{"?categoria=produtivo", 1},
		{"?categoria=IMPRODUTIVO", 1},
		{"?categoria=outros", 0},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		c := env.echo.NewContext(httptest.NewRequest(http.MethodGet, "/api/list_emails"+tt.query, nil), rec)

		require.NoError(t, env.handler.ListEmails(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Emails []map[string]interface{} `json:"emails"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Len(t, body.Emails, tt.count, "query %q", tt.query)
		for _, email := range body.Emails {
			assert.NotEmpty(t, email["_path"])
			assert.NotEmpty(t, email["texto"])
			assert.NotEmpty(t, email["criado_em"])
		}
	}
}
