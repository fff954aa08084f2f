package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocument_ValidDocument(t *testing.T) {
	err := ValidateDocument([]byte(`services:
  web:
    image: nginx:latest
    restart: unless-stopped
    ports:
      - "80:80"
    networks:
      - frontend
networks:
  frontend:
    driver: bridge
`))
	assert.NoError(t, err)
}

func TestValidateDocument_EmptyInput(t *testing.T) {
	assert.NoError(t, ValidateDocument(nil))
	assert.NoError(t, ValidateDocument([]byte("")))
	assert.NoError(t, ValidateDocument([]byte("# comment only\n")))
}

func TestValidateDocument_NotYAML(t *testing.T) {
	err := ValidateDocument([]byte("services: [unclosed"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestValidateDocument_UnknownNetworkReference(t *testing.T) {
	err := ValidateDocument([]byte(`services:
  web:
    image: nginx:latest
    networks:
      - missing
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestValidateDocument_PlaceholdersAreTolerated(t *testing.T) {
	// interpolation is skipped, so deploy-time variables pass through
	err := ValidateDocument([]byte(`services:
  web:
    image: nginx:${TAG}
`))
	assert.NoError(t, err)
}
