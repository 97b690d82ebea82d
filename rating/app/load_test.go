package app

import (
	"context"
	"strings"
	"testing"

	"github.com/Astemirdum/book-ratings/rating/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_IntoStore(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	dump := "/works/OL45804W\t/books/OL7096005M\t4\t2011-08-05\n" +
		"/works/OL45804W\t\t5\t2014-11-24\n" +
		"/authors/OL1A\t\t5\t2014-11-24\n"

	err := load(ctx, store, LoadOptions{Workers: 2, UserPrefix: "ol"}, strings.NewReader(dump), zap.NewNop())
	require.NoError(t, err)

	got, err := store.GetBookRatings(ctx, "OL45804W")
	require.NoError(t, err)
	require.Len(t, got, 2)
}
