package sheets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestExplainAPIError(t *testing.T) {
	const id = "1AbC"

	tests := []struct {
		name   string
		err    error
		status int
		hint   string
	}{
		{"not found", &googleapi.Error{Code: 404}, 404, "spreadsheet 1AbC not found"},
		{"forbidden", &googleapi.Error{Code: 403}, 403, "share the spreadsheet with bot@proj.iam.gserviceaccount.com"},
		{"not a sheet", &googleapi.Error{Code: 400, Message: "This operation is not supported for this document"}, 400, "is not a Google Sheet"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := explainAPIError(tt.err, id, "bot@proj.iam.gserviceaccount.com")
			var accessErr *AccessError
			require.ErrorAs(t, err, &accessErr)
			assert.Equal(t, tt.status, accessErr.Status)
			assert.Contains(t, accessErr.Hint, tt.hint)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestExplainAPIError_PassesThroughOthers(t *testing.T) {
	plain := errors.New("dial tcp: timeout")
	assert.Same(t, plain, explainAPIError(plain, "x", "y"))

	other := &googleapi.Error{Code: 400, Message: "bad range"}
	assert.Equal(t, error(other), explainAPIError(other, "x", "y"))
}

func TestResolveCredentials(t *testing.T) {
	dir := t.TempDir()
	explicit := filepath.Join(dir, "explicit.json")
	fromEnv := filepath.Join(dir, "env.json")
	require.NoError(t, os.WriteFile(explicit, []byte(`{}`), 0o600))
	require.NoError(t, os.WriteFile(fromEnv, []byte(`{}`), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", fromEnv)
	path, err := ResolveCredentials(explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, path)

	path, err = ResolveCredentials(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, fromEnv, path)

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err = ResolveCredentials("")
	assert.ErrorIs(t, err, ErrNoCredentials)

	require.NoError(t, os.WriteFile(LocalCredentialsFile, []byte(`{}`), 0o600))
	path, err = ResolveCredentials("")
	require.NoError(t, err)
	assert.Equal(t, LocalCredentialsFile, path)
}

func TestServiceAccountEmail(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "sa.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"client_email":"bot@proj.iam.gserviceaccount.com"}`), 0o600))
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`not json`), 0o600))

	assert.Equal(t, "bot@proj.iam.gserviceaccount.com", ServiceAccountEmail(good))
	assert.Equal(t, "unknown@unknown", ServiceAccountEmail(bad))
	assert.Equal(t, "unknown@unknown", ServiceAccountEmail(filepath.Join(dir, "nope.json")))
}
