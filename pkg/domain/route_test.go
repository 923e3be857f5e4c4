package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"showroom/pkg/domain"
)

func TestRoute_Slug(t *testing.T) {
	require.Equal(t, "home", domain.Route{Path: "/"}.Slug())
	require.Equal(t, "catalog", domain.Route{Path: "/catalog/"}.Slug())
	require.Equal(t, "product-sofa-oslo", domain.Route{Path: "/product/sofa-oslo"}.Slug())
}

func TestChangeFreq_Valid(t *testing.T) {
	require.True(t, domain.ChangeFreqWeekly.Valid())
	require.True(t, domain.ChangeFreq("never").Valid())
	require.False(t, domain.ChangeFreq("sometimes").Valid())
	require.False(t, domain.ChangeFreq("").Valid())
}
