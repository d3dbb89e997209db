package builder

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPaginateDefaults(t *testing.T) {
	qb := New(nil, url.Values{}).Paginate()

	page, limit := qb.PageLimit()
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)
	require.NotNil(t, qb.Options().Skip)
	require.NotNil(t, qb.Options().Limit)
	assert.Equal(t, int64(0), *qb.Options().Skip)
	assert.Equal(t, int64(10), *qb.Options().Limit)
}

func TestPaginateSkipComputation(t *testing.T) {
	qb := New(nil, url.Values{"page": {"3"}, "limit": {"25"}}).Paginate()

	assert.Equal(t, int64(50), *qb.Options().Skip)
	assert.Equal(t, int64(25), *qb.Options().Limit)
}

func TestPaginateFloorsNonPositiveValues(t *testing.T) {
	for _, params := range []url.Values{
		{"page": {"0"}, "limit": {"0"}},
		{"page": {"-5"}, "limit": {"-1"}},
		{"page": {"junk"}, "limit": {"junk"}},
	} {
		qb := New(nil, params).Paginate()
		page, limit := qb.PageLimit()
		assert.GreaterOrEqual(t, page, 1)
		assert.GreaterOrEqual(t, limit, 1)
		assert.Equal(t, int64((page-1)*limit), *qb.Options().Skip)
	}
}

func TestPaginateLimitIsUncapped(t *testing.T) {
	qb := New(nil, url.Values{"limit": {"1000000"}}).Paginate()
	assert.Equal(t, int64(1000000), *qb.Options().Limit)
}

func TestFilterRangeBrackets(t *testing.T) {
	params := url.Values{"price[gte]": {"10"}, "price[lte]": {"50"}}
	criteria := New(nil, params).Filter().Criteria()

	require.Contains(t, criteria, "price")
	price, ok := criteria["price"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, int64(10), price["$gte"])
	assert.Equal(t, int64(50), price["$lte"])
}

func TestFilterFloatRangeValues(t *testing.T) {
	params := url.Values{"price[gt]": {"9.99"}}
	criteria := New(nil, params).Filter().Criteria()

	price := criteria["price"].(bson.M)
	assert.Equal(t, 9.99, price["$gt"])
}

func TestFilterMalformedBracketKeyKeptLiteral(t *testing.T) {
	params := url.Values{"price[foo]": {"10"}}
	criteria := New(nil, params).Filter().Criteria()

	// unknown operator keeps the literal key, which matches nothing
	assert.NotContains(t, criteria, "price")
	assert.Equal(t, int64(10), criteria["price[foo]"])
}

func TestFilterMultiValueMembership(t *testing.T) {
	params := url.Values{"categories": {"Serums", "Masks"}}
	criteria := New(nil, params).Filter().Criteria()

	categories, ok := criteria["categories"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, []interface{}{"Serums", "Masks"}, categories["$in"])
}

func TestFilterScalarNormalizesToMembership(t *testing.T) {
	params := url.Values{"categories": {"Serums"}}
	criteria := New(nil, params).Filter().Criteria()

	categories, ok := criteria["categories"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, []interface{}{"Serums"}, categories["$in"])
}

func TestFilterCollectionsConvertToObjectIDs(t *testing.T) {
	oid := primitive.NewObjectID()
	params := url.Values{"collections": {oid.Hex()}}
	criteria := New(nil, params).Filter().Criteria()

	collections := criteria["collections"].(bson.M)
	assert.Equal(t, []interface{}{oid}, collections["$in"])
}

func TestFilterMaxPriceShorthand(t *testing.T) {
	params := url.Values{"maxPrice": {"99.5"}}
	criteria := New(nil, params).Filter().Criteria()

	price, ok := criteria["price"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, 99.5, price["$lte"])
}

func TestFilterStripsReservedKeys(t *testing.T) {
	params := url.Values{
		"searchTerm": {"serum"},
		"sort":       {"-price"},
		"limit":      {"5"},
		"page":       {"2"},
		"fields":     {"name"},
		"maxPrice":   {"10"},
		"sku":        {"ABC-123"},
	}
	criteria := New(nil, params).Filter().Criteria()

	for _, reserved := range []string{"searchTerm", "sort", "limit", "page", "fields", "maxPrice"} {
		assert.NotContains(t, criteria, reserved)
	}
	assert.Equal(t, "ABC-123", criteria["sku"])
}

func TestFilterBooleanEquality(t *testing.T) {
	criteria := New(nil, url.Values{"isFeatured": {"true"}}).Filter().Criteria()
	assert.Equal(t, true, criteria["isFeatured"])
}

func TestSearchBuildsRegexOr(t *testing.T) {
	qb := New(nil, url.Values{"searchTerm": {"vitamin"}}).Search("name", "description")
	criteria := qb.Criteria()

	or, ok := criteria["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 2)
	assert.Equal(t, bson.M{"$regex": "vitamin", "$options": "i"}, or[0]["name"])
	assert.Equal(t, bson.M{"$regex": "vitamin", "$options": "i"}, or[1]["description"])
}

func TestSearchExactMatchOnValidObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	qb := New(nil, url.Values{"searchTerm": {oid.Hex()}}).Search("name", "_id")
	or := qb.Criteria()["$or"].([]bson.M)

	require.Len(t, or, 2)
	assert.Equal(t, oid, or[1]["_id"])
}

func TestSearchSkipsInvalidObjectID(t *testing.T) {
	qb := New(nil, url.Values{"searchTerm": {"not-an-id"}}).Search("_id")
	assert.Empty(t, qb.Criteria())
}

func TestSearchNoopWithoutTerm(t *testing.T) {
	qb := New(nil, url.Values{}).Search("name")
	assert.Empty(t, qb.Criteria())
}

func TestSortDefaultsToNewestFirst(t *testing.T) {
	qb := New(nil, url.Values{}).Sort()
	sort, ok := qb.Options().Sort.(bson.D)
	require.True(t, ok)
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, sort)
}

func TestSortCompositeOrdering(t *testing.T) {
	qb := New(nil, url.Values{"sort": {"-price,name"}}).Sort()
	sort := qb.Options().Sort.(bson.D)

	assert.Equal(t, bson.D{
		{Key: "price", Value: -1},
		{Key: "name", Value: 1},
	}, sort)
}

func TestFieldsDefaultExcludesVersionField(t *testing.T) {
	qb := New(nil, url.Values{}).Fields()
	assert.Equal(t, bson.M{"__v": 0}, qb.Options().Projection)
}

func TestFieldsInclusionProjection(t *testing.T) {
	qb := New(nil, url.Values{"fields": {"name,price"}}).Fields()
	assert.Equal(t, bson.M{"name": 1, "price": 1}, qb.Options().Projection)
}

func TestWhereConjoinsWithFilter(t *testing.T) {
	userID := primitive.NewObjectID()
	params := url.Values{"price[gte]": {"10"}}
	criteria := New(nil, params).Where(bson.M{"user_id": userID}).Filter().Criteria()

	and, ok := criteria["$and"].([]bson.M)
	require.True(t, ok)
	require.Len(t, and, 2)
	assert.Equal(t, userID, and[0]["user_id"])
	assert.Contains(t, and[1], "price")
}

func TestCriteriaEmptyByDefault(t *testing.T) {
	assert.Equal(t, bson.M{}, New(nil, url.Values{}).Criteria())
}
