package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/parvesmosarof35/new-ecommerce-api/builder"
	"github.com/parvesmosarof35/new-ecommerce-api/middleware"
	"github.com/parvesmosarof35/new-ecommerce-api/models"
	"github.com/parvesmosarof35/new-ecommerce-api/utils"
)

// notDeleted is the soft-delete predicate, conjoined explicitly on every
// user read.
var notDeleted = bson.M{"isDelete": bson.M{"$ne": true}}

// SignUp creates an account with the buyer role.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	users := h.db().Collection("users")

	count, err := users.CountDocuments(r.Context(), bson.M{"email": req.Email})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to check existing users")
		return
	}
	if count > 0 {
		utils.WriteError(w, http.StatusConflict, "Email is already registered")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	now := time.Now()
	user := models.User{
		ID:        primitive.NewObjectID(),
		FullName:  req.FullName,
		Email:     req.Email,
		Password:  string(hashed),
		Role:      models.RoleBuyer,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := users.InsertOne(r.Context(), user); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, "User registered successfully", user)
}

// Login verifies credentials and issues a JWT.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	var user models.User
	err := h.db().Collection("users").FindOne(r.Context(),
		bson.M{"email": req.Email, "isDelete": bson.M{"$ne": true}},
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "Failed to look up user")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role, h.Cfg.JWTSecret)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "Login successful", models.LoginResponse{Token: token, User: user})
}

// GetUsers lists users through the query layer. Admin only.
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	qb := builder.New(h.db().Collection("users"), r.URL.Query()).
		Where(notDeleted).
		Search("fullname", "email", "_id").
		Filter().
		Sort().
		Paginate().
		Fields()

	var users []models.User
	if err := qb.Find(r.Context(), &users); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	meta, err := qb.CountTotal(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to count users")
		return
	}

	utils.WriteSuccessWithMeta(w, http.StatusOK, "Users retrieved successfully", users, meta)
}

// GetUserByID fetches one user. Admins may fetch anyone; everyone else only
// themselves.
func (h *Handler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.canAccessUser(r, id) {
		utils.WriteError(w, http.StatusForbidden, "You do not have permission to view this user")
		return
	}

	user, err := h.findUser(r, id)
	if err != nil {
		writeUserLookupError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "User retrieved successfully", user)
}

// GetMe returns the authenticated user's own profile.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.findUser(r, userID)
	if err != nil {
		writeUserLookupError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Profile retrieved successfully", user)
}

// UpdateUser updates profile fields. Admins may update anyone; everyone
// else only themselves.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.canAccessUser(r, id) {
		utils.WriteError(w, http.StatusForbidden, "You do not have permission to update this user")
		return
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req models.UpdateUserRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.FullName != "" {
		update["fullname"] = req.FullName
	}
	if req.Phone != "" {
		update["phone"] = req.Phone
	}
	if req.Address != "" {
		update["address"] = req.Address
	}

	result, err := h.db().Collection("users").UpdateOne(r.Context(),
		bson.M{"_id": oid, "isDelete": bson.M{"$ne": true}},
		bson.M{"$set": update},
	)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}
	if result.MatchedCount == 0 {
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return
	}

	user, err := h.findUser(r, id)
	if err != nil {
		writeUserLookupError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "User updated successfully", user)
}

// DeleteUser soft deletes a user. Admin only. The document stays in the
// collection with isDelete set; reads exclude it through the explicit
// predicate.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	result, err := h.db().Collection("users").UpdateOne(r.Context(),
		bson.M{"_id": oid, "isDelete": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"isDelete": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	if result.MatchedCount == 0 {
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "User deleted successfully", nil)
}

func (h *Handler) findUser(r *http.Request, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errBadUserID
	}

	var user models.User
	err = h.db().Collection("users").FindOne(r.Context(),
		bson.M{"_id": oid, "isDelete": bson.M{"$ne": true}},
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

var (
	errBadUserID    = errors.New("invalid user id")
	errUserNotFound = errors.New("user not found")
)

func writeUserLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBadUserID):
		utils.WriteError(w, http.StatusBadRequest, "Invalid user id")
	case errors.Is(err, errUserNotFound):
		utils.WriteError(w, http.StatusNotFound, "User not found")
	default:
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch user")
	}
}

func (h *Handler) canAccessUser(r *http.Request, targetID string) bool {
	role := middleware.Role(r)
	if role == models.RoleAdmin || role == models.RoleSuperAdmin {
		return true
	}
	userID, ok := middleware.UserID(r)
	return ok && userID == targetID
}
