package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmacedo/presenteio/internal/claim"
	"github.com/rmacedo/presenteio/internal/model"
)

var (
	owner   = claim.Actor{ID: "owner-1", DisplayName: "Ana"}
	visitor = claim.Actor{ID: "visitor-1", DisplayName: "Bruno"}
	other   = claim.Actor{ID: "visitor-2", DisplayName: "Carla"}
)

func testList(items ...model.Item) *model.List {
	return &model.List{
		ID:      "list-1",
		Code:    "ABC-123",
		Name:    "Aniversário",
		Color:   model.ColorBlue,
		OwnerID: owner.ID,
		Items:   items,
	}
}

func item(id, name string, priority model.Priority, price float64, category model.Category) model.Item {
	return model.Item{ID: id, Name: name, Priority: priority, Price: price, Category: category}
}

func TestProject_SortByPriority(t *testing.T) {
	list := testList(
		item("1", "a", model.PriorityBaixa, 10, model.CategoryOutros),
		item("2", "b", model.PriorityAlta, 10, model.CategoryOutros),
		item("3", "c", model.PriorityMedia, 10, model.CategoryOutros),
	)

	views := Project(list, visitor, Options{Sort: SortPriority})

	require.Len(t, views, 3)
	assert.Equal(t, model.PriorityAlta, views[0].Priority)
	assert.Equal(t, model.PriorityMedia, views[1].Priority)
	assert.Equal(t, model.PriorityBaixa, views[2].Priority)
}

func TestProject_SortByValue(t *testing.T) {
	list := testList(
		item("1", "a", model.PriorityAlta, 30, model.CategoryOutros),
		item("2", "b", model.PriorityAlta, 10, model.CategoryOutros),
		item("3", "c", model.PriorityAlta, 20, model.CategoryOutros),
	)

	views := Project(list, visitor, Options{Sort: SortValue})

	require.Len(t, views, 3)
	assert.Equal(t, []float64{10, 20, 30},
		[]float64{views[0].Price, views[1].Price, views[2].Price})
}

func TestProject_SortDoesNotMutateSnapshot(t *testing.T) {
	list := testList(
		item("1", "a", model.PriorityBaixa, 30, model.CategoryOutros),
		item("2", "b", model.PriorityAlta, 10, model.CategoryOutros),
	)

	Project(list, visitor, Options{Sort: SortPriority})

	assert.Equal(t, "1", list.Items[0].ID, "stored order must not change")
}

func TestProject_FilterByCategory(t *testing.T) {
	list := testList(
		item("1", "romance", model.PriorityAlta, 40, model.CategoryLivros),
		item("2", "lego", model.PriorityAlta, 100, model.CategoryLego),
		item("3", "misc", model.PriorityAlta, 5, ""), // defaults to Outros
	)

	views := Project(list, visitor, Options{Category: string(model.CategoryLivros)})

	require.Len(t, views, 1)
	assert.Equal(t, "romance", views[0].Name)
}

func TestProject_EmptyCategoryDefaultsToOutros(t *testing.T) {
	list := testList(item("1", "misc", model.PriorityAlta, 5, ""))

	views := Project(list, visitor, Options{Category: string(model.CategoryOutros)})

	require.Len(t, views, 1)
	assert.Equal(t, model.CategoryOutros, views[0].Category)
}

func TestProject_NeverExposesClaimantID(t *testing.T) {
	list := testList(item("1", "tênis", model.PriorityAlta, 200, model.CategoryCalcados))
	require.NoError(t, claim.Claim(list, "1", visitor))

	for _, actor := range []claim.Actor{owner, visitor, other, {}} {
		views := Project(list, actor, DefaultOptions())
		require.Len(t, views, 1)
		assert.True(t, views[0].Claimed)
		assert.Equal(t, "Bruno", views[0].GiftedBy,
			"the claimant's name is visible; only the principal ID stays hidden")
	}
}

func TestProject_ClaimedByMeOnlyForClaimant(t *testing.T) {
	list := testList(item("1", "tênis", model.PriorityAlta, 200, model.CategoryCalcados))
	require.NoError(t, claim.Claim(list, "1", visitor))

	assert.True(t, Project(list, visitor, DefaultOptions())[0].ClaimedByMe)
	assert.False(t, Project(list, other, DefaultOptions())[0].ClaimedByMe)
	assert.False(t, Project(list, owner, DefaultOptions())[0].ClaimedByMe)
}

func TestRender_OwnerFlagAndNoClaimAffordance(t *testing.T) {
	list := testList(item("1", "tênis", model.PriorityAlta, 200, model.CategoryCalcados))

	lv := Render(list, owner, DefaultOptions())
	assert.True(t, lv.IsOwner)
	require.Len(t, lv.Items, 1)
	assert.False(t, lv.Items[0].CanClaim, "owner never gets the claim affordance")
	assert.True(t, lv.Items[0].CanEdit)

	lv = Render(list, visitor, DefaultOptions())
	assert.False(t, lv.IsOwner)
	assert.True(t, lv.Items[0].CanClaim)
}

func TestDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.amazon.com.br/dp/B0ABC", "amazon.com.br"},
		{"https://magazineluiza.com.br/produto", "magazineluiza.com.br"},
		{"not a url", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Domain(tt.in), "Domain(%q)", tt.in)
	}
}

func TestStoreLinks_SkipsEmpty(t *testing.T) {
	it := model.Item{Link1: "https://www.amazon.com.br/x", Link3: "https://shopee.com.br/y"}

	links := storeLinks(it)

	require.Len(t, links, 2)
	assert.Equal(t, "amazon.com.br", links[0].Domain)
	assert.Equal(t, "shopee.com.br", links[1].Domain)
}
