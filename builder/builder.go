// Package builder translates raw HTTP query parameters into filtered,
// sorted, paginated MongoDB queries, independent of the entity queried.
// Stages are chainable and only accumulate criteria; nothing touches the
// database until Find or CountTotal executes, so the accumulation is
// testable on its own.
package builder

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parvesmosarof35/new-ecommerce-api/models"
)

const (
	defaultLimit = 10
	defaultSort  = "-createdAt"
)

// reservedKeys are handled by dedicated stages and excluded from the
// generic equality-filter pass.
var reservedKeys = map[string]struct{}{
	"searchTerm":  {},
	"sort":        {},
	"limit":       {},
	"page":        {},
	"fields":      {},
	"categories":  {},
	"collections": {},
	"skintype":    {},
	"ingredients": {},
	"maxPrice":    {},
}

// arrayFields get membership semantics ($in) even for a single value.
var arrayFields = []string{"categories", "collections", "skintype", "ingredients"}

var rangeOps = map[string]string{
	"gt":  "$gt",
	"gte": "$gte",
	"lt":  "$lt",
	"lte": "$lte",
}

var bracketKey = regexp.MustCompile(`^(\w+)\[(\w+)\]$`)

// QueryBuilder accumulates filter criteria and find options for one
// collection from a raw query-parameter map.
type QueryBuilder struct {
	coll   *mongo.Collection
	params map[string][]string
	conds  []bson.M
	opts   *options.FindOptions
}

// New creates a builder for coll driven by params (typically r.URL.Query()).
func New(coll *mongo.Collection, params map[string][]string) *QueryBuilder {
	return &QueryBuilder{
		coll:   coll,
		params: params,
		opts:   options.Find(),
	}
}

// Where conjoins an explicit criteria document. Callers use it for scoping
// (e.g. user ownership) and for the soft-delete predicate, which is always
// applied explicitly rather than through hidden query hooks.
func (qb *QueryBuilder) Where(criteria bson.M) *QueryBuilder {
	if len(criteria) > 0 {
		qb.conds = append(qb.conds, criteria)
	}
	return qb
}

// Search adds an OR of case-insensitive substring matches over the given
// fields when a searchTerm is present. "_id" in the field list matches
// exactly when the term is a valid ObjectID and is skipped otherwise.
func (qb *QueryBuilder) Search(searchableFields ...string) *QueryBuilder {
	term := qb.get("searchTerm")
	if term == "" {
		return qb
	}

	var or []bson.M
	for _, field := range searchableFields {
		if field == "_id" {
			if oid, err := primitive.ObjectIDFromHex(term); err == nil {
				or = append(or, bson.M{"_id": oid})
			}
			continue
		}
		or = append(or, bson.M{field: bson.M{"$regex": term, "$options": "i"}})
	}

	if len(or) > 0 {
		qb.conds = append(qb.conds, bson.M{"$or": or})
	}
	return qb
}

// Filter builds the generic filter pass: reserved keys are stripped,
// field[op] bracket keys expand to range operators, multi-valued params and
// known array fields get $in membership semantics, and maxPrice shorthand
// becomes price ≤ value. Malformed bracket keys fall through as literal
// equality keys that match nothing.
func (qb *QueryBuilder) Filter() *QueryBuilder {
	criteria := bson.M{}

	for key, values := range qb.params {
		if _, ok := reservedKeys[key]; ok {
			continue
		}
		if len(values) == 0 {
			continue
		}

		if m := bracketKey.FindStringSubmatch(key); m != nil {
			field, op := m[1], m[2]
			if mongoOp, ok := rangeOps[op]; ok {
				existing, isRange := criteria[field].(bson.M)
				if criteria[field] != nil && !isRange {
					// A plain equality value already claimed the field;
					// the operator key is dropped.
					continue
				}
				if existing == nil {
					existing = bson.M{}
				}
				existing[mongoOp] = parseScalar(values[0])
				criteria[field] = existing
				continue
			}
			// Unknown operator: keep the literal key so it fails to
			// match rather than crashing.
		}

		if len(values) > 1 {
			criteria[key] = bson.M{"$in": parseScalars(values)}
			continue
		}
		criteria[key] = parseScalar(values[0])
	}

	for _, field := range arrayFields {
		if values, ok := qb.params[field]; ok && len(values) > 0 {
			criteria[field] = bson.M{"$in": parseMembers(field, values)}
		}
	}

	if maxPrice := qb.get("maxPrice"); maxPrice != "" {
		price, isRange := criteria["price"].(bson.M)
		if price == nil || isRange {
			if price == nil {
				price = bson.M{}
			}
			price["$lte"] = parseScalar(maxPrice)
			criteria["price"] = price
		}
	}

	if len(criteria) > 0 {
		qb.conds = append(qb.conds, criteria)
	}
	return qb
}

// Sort applies the comma-separated sort parameter; a "-" prefix means
// descending. Multiple fields produce a composite ordering in the order
// listed. Defaults to newest first.
func (qb *QueryBuilder) Sort() *QueryBuilder {
	sortParam := qb.get("sort")
	if sortParam == "" {
		sortParam = defaultSort
	}

	var sortDoc bson.D
	for _, field := range strings.Split(sortParam, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		direction := 1
		if strings.HasPrefix(field, "-") {
			direction = -1
			field = field[1:]
		}
		if field == "" {
			continue
		}
		sortDoc = append(sortDoc, bson.E{Key: field, Value: direction})
	}

	if len(sortDoc) > 0 {
		qb.opts.SetSort(sortDoc)
	}
	return qb
}

// Paginate computes skip/limit from the page and limit parameters, both
// floored to 1. The limit is deliberately uncapped.
func (qb *QueryBuilder) Paginate() *QueryBuilder {
	page, limit := qb.PageLimit()
	qb.opts.SetSkip(int64((page - 1) * limit))
	qb.opts.SetLimit(int64(limit))
	return qb
}

// Fields applies the comma-separated projection list; the default excludes
// the internal version field only.
func (qb *QueryBuilder) Fields() *QueryBuilder {
	fieldsParam := qb.get("fields")
	if fieldsParam == "" {
		qb.opts.SetProjection(bson.M{"__v": 0})
		return qb
	}

	projection := bson.M{}
	for _, field := range strings.Split(fieldsParam, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		projection[field] = 1
	}
	if len(projection) > 0 {
		qb.opts.SetProjection(projection)
	}
	return qb
}

// Find executes the accumulated query and decodes all documents into
// results (a pointer to a slice).
func (qb *QueryBuilder) Find(ctx context.Context, results interface{}) error {
	cursor, err := qb.coll.Find(ctx, qb.Criteria(), qb.opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, results)
}

// CountTotal counts documents matching the accumulated criteria, ignoring
// pagination, sort and projection, and returns the pagination meta block.
func (qb *QueryBuilder) CountTotal(ctx context.Context) (models.Meta, error) {
	total, err := qb.coll.CountDocuments(ctx, qb.Criteria())
	if err != nil {
		return models.Meta{}, err
	}

	page, limit := qb.PageLimit()
	totalPage := (total + int64(limit) - 1) / int64(limit)

	return models.Meta{
		Page:      page,
		Limit:     limit,
		Total:     total,
		TotalPage: totalPage,
	}, nil
}

// Criteria returns the single filter document accumulated so far.
func (qb *QueryBuilder) Criteria() bson.M {
	switch len(qb.conds) {
	case 0:
		return bson.M{}
	case 1:
		return qb.conds[0]
	default:
		return bson.M{"$and": qb.conds}
	}
}

// Options exposes the accumulated find options.
func (qb *QueryBuilder) Options() *options.FindOptions {
	return qb.opts
}

// PageLimit returns the effective page and limit, both at least 1.
func (qb *QueryBuilder) PageLimit() (int, int) {
	page := atoiFloor(qb.get("page"), 1, 1)
	limit := atoiFloor(qb.get("limit"), defaultLimit, 1)
	return page, limit
}

func (qb *QueryBuilder) get(key string) string {
	if values, ok := qb.params[key]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

func atoiFloor(s string, fallback, floor int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	if n < floor {
		return floor
	}
	return n
}

// parseScalar converts a raw query value to the most specific type it can
// hold; numeric values must become numbers for range comparisons to work.
func parseScalar(s string) interface{} {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func parseScalars(values []string) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		out = append(out, parseScalar(v))
	}
	return out
}

// parseMembers keeps array-field members as strings, except collection
// references which are stored as ObjectIDs.
func parseMembers(field string, values []string) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		if field == "collections" {
			if oid, err := primitive.ObjectIDFromHex(v); err == nil {
				out = append(out, oid)
				continue
			}
		}
		out = append(out, v)
	}
	return out
}
