package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/offline"
)

func TestPrintQueue_Vacia(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printQueue(&buf, nil))
	assert.Equal(t, "cola vacía\n", buf.String())
}

func TestPrintQueue_MuestraEstadoYError(t *testing.T) {
	var buf bytes.Buffer
	entries := []offline.QueuedSale{
		{ID: "q1", CreatedAt: time.Now(), Payload: dto.SubmitSaleRequest{Total: decimal.NewFromInt(1500)}},
		{ID: "q2", CreatedAt: time.Now(), Payload: dto.SubmitSaleRequest{Total: decimal.NewFromInt(250)},
			Attempts: 2, LastError: "sin conexión con el servidor"},
		{ID: "q3", CreatedAt: time.Now(), Synced: true},
	}
	require.NoError(t, printQueue(&buf, entries))

	out := buf.String()
	assert.Contains(t, out, "ÚLTIMO ERROR")
	assert.Contains(t, out, "1500")
	assert.Contains(t, out, "sin conexión con el servidor")
	assert.Contains(t, out, "sincronizada")
}

func TestRootCmd_Subcomandos(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{{"serve"}, {"sync"}, {"queue", "list"}, {"queue", "purge"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
