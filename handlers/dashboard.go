package handlers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parvesmosarof35/new-ecommerce-api/models"
	"github.com/parvesmosarof35/new-ecommerce-api/utils"
)

// GetDashboardStats aggregates storefront counters for the admin panel:
// totals, revenue over paid orders, order counts by status and the five
// most recent orders.
func (h *Handler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	db := h.db()

	totalUsers, err := db.Collection("users").CountDocuments(ctx, notDeleted)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	totalProducts, err := db.Collection("products").CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	totalOrders, err := db.Collection("orders").CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	var revenue struct {
		Total float64 `bson:"total"`
	}
	cursor, err := db.Collection("orders").Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"paymentStatus": models.PaymentStatusPaid}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$totalAmount"}}}},
	})
	if err == nil {
		var rows []struct {
			Total float64 `bson:"total"`
		}
		if err := cursor.All(ctx, &rows); err == nil && len(rows) > 0 {
			revenue = rows[0]
		}
	}

	statusCounts := map[string]int64{}
	cursor, err = db.Collection("orders").Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	})
	if err == nil {
		var rows []struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cursor.All(ctx, &rows); err == nil {
			for _, row := range rows {
				statusCounts[row.Status] = row.Count
			}
		}
	}

	var recentOrders []models.Order
	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(5)
	if cursor, err := db.Collection("orders").Find(ctx, bson.M{}, findOpts); err == nil {
		cursor.All(ctx, &recentOrders)
	}

	utils.WriteSuccess(w, http.StatusOK, "Dashboard stats retrieved successfully", map[string]interface{}{
		"totalUsers":     totalUsers,
		"totalProducts":  totalProducts,
		"totalOrders":    totalOrders,
		"totalRevenue":   revenue.Total,
		"ordersByStatus": statusCounts,
		"recentOrders":   recentOrders,
	})
}
