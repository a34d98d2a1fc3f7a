package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"maitred/internal/catalog"
	"maitred/internal/concierge"
	"maitred/internal/delivery"
	"maitred/internal/intent"
	"maitred/internal/models"
	"maitred/internal/normalize"
	"maitred/internal/ordering"
	"maitred/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConcierge() (*concierge.Concierge, *catalog.Catalog) {
	cat := catalog.New([]models.MenuItem{
		{Name: "pizza", Category: "principales", ServingSize: "1 unidad", Price: 1000},
	}, normalize.New(normalize.DefaultRules), nil)
	router := intent.NewRouter(intent.Deps{
		Catalog:   cat,
		Delivery:  delivery.NewChecker(catalog.NewDeliveryCities([]string{"madrid"}), nil),
		Finalizer: ordering.NewFinalizer(nil, nil, nil),
	}, intent.Vocabulary{}, nil)
	return concierge.New(router, nil), cat
}

func TestRunChat(t *testing.T) {
	c, cat := testConcierge()
	sess := session.New("local", cat, nil)

	in := strings.NewReader("2 pizza\n\nsalir\n1 pizza\n")
	var out bytes.Buffer

	require.NoError(t, runChat(context.Background(), c, sess, in, &out))

	assert.Contains(t, out.String(), session.Greeting)
	assert.Contains(t, out.String(), "$20.00")
	assert.Contains(t, out.String(), "¡Hasta pronto!")
	assert.Equal(t, 2, sess.Ledger().Quantity("pizza"))
}

func TestRunChat_EOF(t *testing.T) {
	c, cat := testConcierge()
	sess := session.New("local", cat, nil)

	var out bytes.Buffer
	require.NoError(t, runChat(context.Background(), c, sess, strings.NewReader("menu"), &out))
	assert.Contains(t, out.String(), "Pizza")
}

func TestTokenCmd(t *testing.T) {
	t.Setenv("MAITRED_JWT_SECRET", "secret")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config", "does-not-exist.yaml", "token", "--subject", "tester"})

	require.NoError(t, root.Execute())
	assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "."), 3)
}

func TestTokenCmd_NoSecret(t *testing.T) {
	t.Setenv("MAITRED_JWT_SECRET", "")
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", "does-not-exist.yaml", "token"})

	assert.Error(t, root.Execute())
}
