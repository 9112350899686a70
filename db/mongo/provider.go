package mongo

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/pantrypal/pantrypal-api/db"
	"github.com/pantrypal/pantrypal-api/env"
	"github.com/pantrypal/pantrypal-api/types"
)

const (
	duplicateError = 11000
)

// Provider implements db.Provider against a MongoDB database
type Provider struct {
	connectionURI string
	databaseName  string
	client        *mongo.Client
}

// NewProvider creates a new provider and loads values in from the environment
func NewProvider() (*Provider, error) {
	connectionURI, err := env.GetEnv("database connection URI", "MONGO_DB_URI")
	if err != nil {
		return nil, err
	}

	dbName, err := env.GetEnv("database name", "MONGO_DB_NAME")
	if err != nil {
		return nil, err
	}

	return &Provider{
		connectionURI: connectionURI,
		databaseName:  dbName,
		client:        nil,
	}, nil
}

// Connect connects to the database, pings it, and initializes indices
func (p *Provider) Connect(ctx context.Context) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(p.connectionURI))
	if err != nil {
		return err
	}

	// Ping the primary
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return err
	}

	p.client = client

	// Initialize any collections/indices
	err = p.initialize(ctx)
	if err != nil {
		return err
	}

	return nil
}

// Disconnect closes the connection to the database
func (p *Provider) Disconnect(ctx context.Context) error {
	err := p.client.Disconnect(ctx)
	if err != nil {
		return err
	}

	return nil
}

// Create anything needed for the database,
// like indices
func (p *Provider) initialize(ctx context.Context) error {
	log.Println("initializing the MongoDB database")

	_, err := p.ingredients().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"product_id": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	// The (user_id, product_id) index backs the at-most-one-item-per-
	// product invariant on both list collections
	for _, listCollection := range []*mongo.Collection{p.groceryList(), p.wishlist()} {
		_, err = listCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.M{"id": 1},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return err
		}

		_, err = listCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return err
		}
	}

	_, err = p.preferences().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"user_id": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = p.groups().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"id": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = p.memberships().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"id": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	return nil
}

func (p *Provider) ingredients() *mongo.Collection {
	return p.client.Database(p.databaseName).Collection("ingredients")
}

func (p *Provider) groceryList() *mongo.Collection {
	return p.client.Database(p.databaseName).Collection("user_ingredients")
}

func (p *Provider) wishlist() *mongo.Collection {
	return p.client.Database(p.databaseName).Collection("user_wishlist")
}

func (p *Provider) preferences() *mongo.Collection {
	return p.client.Database(p.databaseName).Collection("user_preferences")
}

func (p *Provider) groups() *mongo.Collection {
	return p.client.Database(p.databaseName).Collection("groups")
}

func (p *Provider) memberships() *mongo.Collection {
	return p.client.Database(p.databaseName).Collection("group_membership")
}

// GetIngredient looks up a single catalog row by its product ID
func (p *Provider) GetIngredient(ctx context.Context, productID string) (*types.Ingredient, error) {
	collection := p.ingredients()
	result := collection.FindOne(ctx, bson.D{{Key: "product_id", Value: productID}})
	if result.Err() == mongo.ErrNoDocuments {
		return nil, db.NewNotFoundError(productID)
	}

	var ingredient types.Ingredient
	err := result.Decode(&ingredient)
	if err != nil {
		return nil, err
	}

	return &ingredient, nil
}

// GetAllIngredients lists catalog rows matching the given filter
func (p *Provider) GetAllIngredients(ctx context.Context, filter types.IngredientFilter) ([]types.Ingredient, error) {
	collection := p.ingredients()

	query := bson.D{}
	if filter.Category != "" {
		query = append(query, bson.E{Key: "category", Value: filter.Category})
	}

	options := options.Find()
	options.SetSort(bson.D{{Key: "product_id", Value: 1}})
	if filter.Limit > 0 {
		options.SetLimit(filter.Limit)
	}
	if filter.Offset > 0 {
		options.SetSkip(filter.Offset)
	}

	cursor, err := collection.Find(ctx, query, options)
	if err != nil {
		return nil, err
	}

	var ingredients []types.Ingredient
	err = cursor.All(ctx, &ingredients)
	if err != nil {
		return nil, err
	}

	// Return non-nil slice so JSON serialization is nice
	if ingredients == nil {
		return []types.Ingredient{}, nil
	}

	return ingredients, nil
}

// UpdateIngredient patches a catalog row's metadata
// (such as its image URL after an upload)
func (p *Provider) UpdateIngredient(ctx context.Context, productID string, update map[string]interface{}) (*types.Ingredient, error) {
	updateDocument := bson.D{}
	for key, value := range update {
		updateDocument = append(updateDocument, bson.E{Key: key, Value: value})
	}

	collection := p.ingredients()
	filter := bson.D{{Key: "product_id", Value: productID}}
	updateQuery := bson.D{{Key: "$set", Value: updateDocument}}
	after := options.After
	findOptions := options.FindOneAndUpdateOptions{ReturnDocument: &after}

	var updatedIngredient types.Ingredient
	err := collection.FindOneAndUpdate(ctx, filter, updateQuery, &findOptions).Decode(&updatedIngredient)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, db.NewNotFoundError(productID)
		}

		return nil, err
	}

	return &updatedIngredient, nil
}

// GetGroceryList fetches all grocery list rows for the user,
// most recently created first
func (p *Provider) GetGroceryList(ctx context.Context, userID string) ([]types.ListItem, error) {
	collection := p.groceryList()

	options := options.Find()
	options.SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := collection.Find(ctx, bson.D{{Key: "user_id", Value: userID}}, options)
	if err != nil {
		return nil, err
	}

	var items []types.ListItem
	err = cursor.All(ctx, &items)
	if err != nil {
		return nil, err
	}

	if items == nil {
		return []types.ListItem{}, nil
	}

	return items, nil
}

// InsertGroceryItem inserts a new grocery list row
func (p *Provider) InsertGroceryItem(ctx context.Context, item types.ListItem) (*types.ListItem, error) {
	return p.insertListItem(ctx, p.groceryList(), item)
}

// UpdateGroceryItemQuantity updates a single row's quantity,
// scoped by both item ID and user ID
func (p *Provider) UpdateGroceryItemQuantity(ctx context.Context, id string, userID string, quantity string) (*types.ListItem, error) {
	return p.updateListItemQuantity(ctx, p.groceryList(), id, userID, quantity)
}

// DeleteGroceryItem deletes a single row, scoped by both item ID and user ID
func (p *Provider) DeleteGroceryItem(ctx context.Context, id string, userID string) error {
	return p.deleteListItem(ctx, p.groceryList(), id, userID)
}

// GetWishlist fetches all wishlist rows for the user and denormalizes
// ingredient catalog details onto each row.
// No explicit ordering is requested (server default)
func (p *Provider) GetWishlist(ctx context.Context, userID string) ([]types.ListItem, error) {
	collection := p.wishlist()

	cursor, err := collection.Find(ctx, bson.D{{Key: "user_id", Value: userID}})
	if err != nil {
		return nil, err
	}

	var items []types.ListItem
	err = cursor.All(ctx, &items)
	if err != nil {
		return nil, err
	}

	if items == nil {
		return []types.ListItem{}, nil
	}

	// Collect the referenced product IDs and fetch their catalog rows
	// in a single query, then fold the details onto each item
	productIDs := []string{}
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}

	ingredientCursor, err := p.ingredients().Find(ctx,
		bson.D{{Key: "product_id", Value: bson.D{{Key: "$in", Value: productIDs}}}})
	if err != nil {
		return nil, err
	}

	var ingredients []types.Ingredient
	err = ingredientCursor.All(ctx, &ingredients)
	if err != nil {
		return nil, err
	}

	ingredientMap := make(map[string]types.Ingredient)
	for _, ingredient := range ingredients {
		ingredientMap[ingredient.ProductID] = ingredient
	}

	for i, item := range items {
		if ingredient, ok := ingredientMap[item.ProductID]; ok {
			items[i].Name = ingredient.Name
			items[i].Category = ingredient.Category
			items[i].Description = ingredient.Description
			items[i].Nutrition = ingredient.Nutrition
			items[i].ImageURL = ingredient.ImageURL
		}
	}

	return items, nil
}

// InsertWishlistItem inserts a new wishlist row
func (p *Provider) InsertWishlistItem(ctx context.Context, item types.ListItem) (*types.ListItem, error) {
	return p.insertListItem(ctx, p.wishlist(), item)
}

// UpdateWishlistItemQuantity updates a single row's quantity,
// scoped by both item ID and user ID
func (p *Provider) UpdateWishlistItemQuantity(ctx context.Context, id string, userID string, quantity string) (*types.ListItem, error) {
	return p.updateListItemQuantity(ctx, p.wishlist(), id, userID, quantity)
}

// DeleteWishlistItem deletes a single row, scoped by both item ID and user ID
func (p *Provider) DeleteWishlistItem(ctx context.Context, id string, userID string) error {
	return p.deleteListItem(ctx, p.wishlist(), id, userID)
}

func (p *Provider) insertListItem(ctx context.Context, collection *mongo.Collection, item types.ListItem) (*types.ListItem, error) {
	_, err := collection.InsertOne(ctx, item)
	if err != nil {
		// Handle known cases (such as when the item was duplicate)
		if writeException, ok := err.(mongo.WriteException); ok && isDuplicate(writeException) {
			return nil, db.NewDuplicateIDError(item.ID)
		}

		return nil, err
	}

	return &item, nil
}

func (p *Provider) updateListItemQuantity(ctx context.Context, collection *mongo.Collection, id string, userID string, quantity string) (*types.ListItem, error) {
	filter := bson.D{{Key: "id", Value: id}, {Key: "user_id", Value: userID}}
	updateQuery := bson.D{{Key: "$set", Value: bson.D{{Key: "quantity", Value: quantity}}}}
	after := options.After
	findOptions := options.FindOneAndUpdateOptions{ReturnDocument: &after}

	var updatedItem types.ListItem
	err := collection.FindOneAndUpdate(ctx, filter, updateQuery, &findOptions).Decode(&updatedItem)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, db.NewNotFoundError(id)
		}

		return nil, err
	}

	return &updatedItem, nil
}

func (p *Provider) deleteListItem(ctx context.Context, collection *mongo.Collection, id string, userID string) error {
	result, err := collection.DeleteOne(ctx, bson.D{{Key: "id", Value: id}, {Key: "user_id", Value: userID}})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return db.NewNotFoundError(id)
	}

	return nil
}

// GetPreferences fetches the preference row for the user
func (p *Provider) GetPreferences(ctx context.Context, userID string) (*types.UserPreferences, error) {
	collection := p.preferences()
	result := collection.FindOne(ctx, bson.D{{Key: "user_id", Value: userID}})
	if result.Err() == mongo.ErrNoDocuments {
		return nil, db.NewNotFoundError(userID)
	}

	var preferences types.UserPreferences
	err := result.Decode(&preferences)
	if err != nil {
		return nil, err
	}

	return &preferences, nil
}

// SavePreferences writes the full preference row for the user,
// updating the existing row if one exists and inserting otherwise
func (p *Provider) SavePreferences(ctx context.Context, preferences types.UserPreferences) (*types.UserPreferences, error) {
	collection := p.preferences()

	// First check if a record exists
	existing := collection.FindOne(ctx, bson.D{{Key: "user_id", Value: preferences.UserID}})
	if existing.Err() == mongo.ErrNoDocuments {
		_, err := collection.InsertOne(ctx, preferences)
		if err != nil {
			if writeException, ok := err.(mongo.WriteException); ok && isDuplicate(writeException) {
				return nil, db.NewDuplicateIDError(preferences.UserID)
			}

			return nil, err
		}

		return &preferences, nil
	}
	if existing.Err() != nil {
		return nil, existing.Err()
	}

	filter := bson.D{{Key: "user_id", Value: preferences.UserID}}
	updateQuery := bson.D{{Key: "$set", Value: preferences}}
	after := options.After
	findOptions := options.FindOneAndUpdateOptions{ReturnDocument: &after}

	var updated types.UserPreferences
	err := collection.FindOneAndUpdate(ctx, filter, updateQuery, &findOptions).Decode(&updated)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// UpdatePreferenceLocation patches only the location field of the
// user's preference row (used for the geocoding write-back)
func (p *Provider) UpdatePreferenceLocation(ctx context.Context, userID string, location string) error {
	collection := p.preferences()
	result, err := collection.UpdateOne(ctx,
		bson.D{{Key: "user_id", Value: userID}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "location", Value: location}}}})
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return db.NewNotFoundError(userID)
	}

	return nil
}

// GetGroup fetches a single group by its ID
func (p *Provider) GetGroup(ctx context.Context, id string) (*types.Group, error) {
	collection := p.groups()
	result := collection.FindOne(ctx, bson.D{{Key: "id", Value: id}})
	if result.Err() == mongo.ErrNoDocuments {
		return nil, db.NewNotFoundError(id)
	}

	var group types.Group
	err := result.Decode(&group)
	if err != nil {
		return nil, err
	}

	return &group, nil
}

// CreateGroup inserts a new group
func (p *Provider) CreateGroup(ctx context.Context, group types.Group) error {
	collection := p.groups()
	_, err := collection.InsertOne(ctx, group)
	if err != nil {
		// Handle known cases (such as when the group was duplicate)
		if writeException, ok := err.(mongo.WriteException); ok && isDuplicate(writeException) {
			return db.NewDuplicateIDError(group.ID)
		}

		return err
	}

	return nil
}

// CreateMembership inserts a new group membership row
func (p *Provider) CreateMembership(ctx context.Context, membership types.GroupMembership) error {
	collection := p.memberships()
	_, err := collection.InsertOne(ctx, membership)
	if err != nil {
		if writeException, ok := err.(mongo.WriteException); ok && isDuplicate(writeException) {
			return db.NewDuplicateIDError(membership.ID)
		}

		return err
	}

	return nil
}

// GetMembershipsForUser fetches all membership rows for the user
func (p *Provider) GetMembershipsForUser(ctx context.Context, userID string) ([]types.GroupMembership, error) {
	collection := p.memberships()

	cursor, err := collection.Find(ctx, bson.D{{Key: "user_id", Value: userID}})
	if err != nil {
		return nil, err
	}

	var memberships []types.GroupMembership
	err = cursor.All(ctx, &memberships)
	if err != nil {
		return nil, err
	}

	if memberships == nil {
		return []types.GroupMembership{}, nil
	}

	return memberships, nil
}

// GetGroupsForUser fetches the full group rows for every group the
// user is a member of
func (p *Provider) GetGroupsForUser(ctx context.Context, userID string) ([]types.Group, error) {
	memberships, err := p.GetMembershipsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	groupIDs := []string{}
	for _, membership := range memberships {
		groupIDs = append(groupIDs, membership.GroupID)
	}

	cursor, err := p.groups().Find(ctx, bson.D{{Key: "id", Value: bson.D{{Key: "$in", Value: groupIDs}}}})
	if err != nil {
		return nil, err
	}

	var groups []types.Group
	err = cursor.All(ctx, &groups)
	if err != nil {
		return nil, err
	}

	if groups == nil {
		return []types.Group{}, nil
	}

	return groups, nil
}

// Detects if the given write exception is caused by (in part)
// by a duplicate key error
func isDuplicate(writeException mongo.WriteException) bool {
	for _, writeError := range writeException.WriteErrors {
		if writeError.Code == duplicateError {
			return true
		}
	}

	return false
}
