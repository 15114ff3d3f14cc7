package echo_test

import (
	"context"
	"testing"

	"github.com/Tendo1904/mas-lab/pkg/adapters/echo"
	"github.com/Tendo1904/mas-lab/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEcho(t *testing.T) {
	svc := echo.New()

	resp, err := svc.Complete(context.Background(), domain.UserRequest("You are a geek.\nBe brief.", "what is a monad?"))
	require.NoError(t, err)
	assert.Equal(t, "[You are a geek.] what is a monad?", resp.Text)

	resp, err = svc.Complete(context.Background(), domain.UserRequest("", "plain"))
	require.NoError(t, err)
	assert.Equal(t, "plain", resp.Text)
}

func TestEcho_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := echo.New().Complete(ctx, domain.UserRequest("x", "y"))
	assert.ErrorIs(t, err, context.Canceled)
}
