// Package cart implements the per-user shopping cart. Each (user, product)
// pair is a single document; concurrent mutations are last-write-wins.
package cart

import (
	"context"
	"errors"
	"math"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parvesmosarof35/new-ecommerce-api/builder"
	"github.com/parvesmosarof35/new-ecommerce-api/models"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrItemNotFound      = errors.New("cart item not found")
)

// Service provides cart operations backed by MongoDB.
type Service struct {
	db *mongo.Database
}

func NewService(db *mongo.Database) *Service {
	return &Service{db: db}
}

func (s *Service) items() *mongo.Collection    { return s.db.Collection("carts") }
func (s *Service) products() *mongo.Collection { return s.db.Collection("products") }

// Add puts a product into the user's cart. If a line for the product
// already exists its quantity is incremented and price_at_addition is
// re-synced to the current product price; otherwise a new line captures the
// current price.
func (s *Service) Add(ctx context.Context, userID primitive.ObjectID, req models.AddToCartRequest) (*models.CartItem, error) {
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	var product models.Product
	err = s.products().FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.StockQuantity < req.Quantity {
		return nil, ErrInsufficientStock
	}

	var existing models.CartItem
	err = s.items().FindOne(ctx, bson.M{"user_id": userID, "product_id": productID}).Decode(&existing)
	switch {
	case err == nil:
		newQuantity := existing.Quantity + req.Quantity
		if product.StockQuantity < newQuantity {
			return nil, ErrInsufficientStock
		}
		after := options.After
		var updated models.CartItem
		err = s.items().FindOneAndUpdate(ctx,
			bson.M{"_id": existing.ID},
			bson.M{"$set": bson.M{
				"quantity":          newQuantity,
				"price_at_addition": product.Price,
				"updatedAt":         time.Now(),
			}},
			options.FindOneAndUpdate().SetReturnDocument(after),
		).Decode(&updated)
		if err != nil {
			return nil, err
		}
		updated.Product = &product
		return &updated, nil

	case errors.Is(err, mongo.ErrNoDocuments):
		now := time.Now()
		item := models.CartItem{
			ID:              primitive.NewObjectID(),
			UserID:          userID,
			ProductID:       productID,
			Quantity:        req.Quantity,
			PriceAtAddition: product.Price,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if _, err := s.items().InsertOne(ctx, item); err != nil {
			return nil, err
		}
		item.Product = &product
		return &item, nil

	default:
		return nil, err
	}
}

// Get returns the user's cart lines through the generic query layer, with
// attached product documents and a summary of the returned page.
func (s *Service) Get(ctx context.Context, userID primitive.ObjectID, params url.Values) ([]models.CartItem, models.Meta, models.CartSummary, error) {
	qb := builder.New(s.items(), params).
		Where(bson.M{"user_id": userID}).
		Filter().
		Sort().
		Paginate().
		Fields()

	var items []models.CartItem
	if err := qb.Find(ctx, &items); err != nil {
		return nil, models.Meta{}, models.CartSummary{}, err
	}
	meta, err := qb.CountTotal(ctx)
	if err != nil {
		return nil, models.Meta{}, models.CartSummary{}, err
	}

	if err := s.attachProducts(ctx, items); err != nil {
		return nil, models.Meta{}, models.CartSummary{}, err
	}
	return items, meta, ComputeSummary(items), nil
}

// ItemsForCheckout reads the full cart without pagination. Checkout must
// see every line, not the first page.
func (s *Service) ItemsForCheckout(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, models.CartSummary, error) {
	cursor, err := s.items().Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, models.CartSummary{}, err
	}
	defer cursor.Close(ctx)

	var items []models.CartItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, models.CartSummary{}, err
	}
	if err := s.attachProducts(ctx, items); err != nil {
		return nil, models.CartSummary{}, err
	}
	return items, ComputeSummary(items), nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
// The captured price is not re-synced here.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return s.Remove(ctx, userID, productID)
	}

	var product models.Product
	err := s.products().FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.StockQuantity < quantity {
		return nil, ErrInsufficientStock
	}

	after := options.After
	var updated models.CartItem
	err = s.items().FindOneAndUpdate(ctx,
		bson.M{"user_id": userID, "product_id": productID},
		bson.M{"$set": bson.M{"quantity": quantity, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	updated.Product = &product
	return &updated, nil
}

// Remove deletes one product's line from the user's cart.
func (s *Service) Remove(ctx context.Context, userID, productID primitive.ObjectID) (*models.CartItem, error) {
	var removed models.CartItem
	err := s.items().FindOneAndDelete(ctx, bson.M{"user_id": userID, "product_id": productID}).Decode(&removed)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &removed, nil
}

// Clear deletes every line in the user's cart and reports how many went.
func (s *Service) Clear(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := s.items().DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (s *Service) attachProducts(ctx context.Context, items []models.CartItem) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	cursor, err := s.products().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return err
	}

	byID := make(map[primitive.ObjectID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for i := range items {
		items[i].Product = byID[items[i].ProductID]
	}
	return nil
}

// ComputeSummary totals a set of cart lines using the captured prices.
func ComputeSummary(items []models.CartItem) models.CartSummary {
	var subtotal float64
	var totalItems int
	for _, item := range items {
		subtotal += item.PriceAtAddition * float64(item.Quantity)
		totalItems += item.Quantity
	}
	return models.CartSummary{
		Subtotal:   math.Round(subtotal*100) / 100,
		TotalItems: totalItems,
		ItemCount:  len(items),
	}
}
