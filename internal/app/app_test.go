// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 msg Contributors

package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/malinatrash/msg/internal/config"
)

func TestNew_RequiresConfigAndLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := New(context.Background(), nil, logger)
	assert.Error(t, err)

	cfg := config.Default()
	_, err = New(context.Background(), &cfg, nil)
	assert.Error(t, err)
}
