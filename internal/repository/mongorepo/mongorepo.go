// Package mongorepo implements the storefront repositories on MongoDB; every
// entity is one document and a cart save is a single ReplaceOne.
package mongorepo

import (
	"context"
	"errors"
	"regexp"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/karadag/storefront/internal/domain"
	"github.com/karadag/storefront/internal/repository"
)

const (
	colCategories = "categories"
	colProducts   = "products"
	colCarts      = "carts"
	colUsers      = "users"
	colOprLogs    = "oprlogs"
)

// New returns mongo backed stores on database db
func New(client *mongo.Client, db *mongo.Database) *repository.Stores {
	return &repository.Stores{
		Categories: &MongoCategoryRepository{col: db.Collection(colCategories)},
		Products:   &MongoProductRepository{col: db.Collection(colProducts)},
		Carts:      &MongoCartRepository{col: db.Collection(colCarts)},
		Users:      &MongoUserRepository{col: db.Collection(colUsers)},
		OprLogs:    &MongoOprLogRepository{col: db.Collection(colOprLogs)},
		Migrate: func(ctx context.Context) error {
			return ensureIndexes(ctx, db)
		},
		Drop: func(ctx context.Context) error {
			for _, name := range []string{colCategories, colProducts, colCarts, colUsers, colOprLogs} {
				if err := db.Collection(name).Drop(ctx); err != nil {
					return pkgerrors.Wrap(err, "drop "+name)
				}
			}
			return nil
		},
		Close: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	}
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := func(keys ...string) mongo.IndexModel {
		d := bson.D{}
		for _, k := range keys {
			d = append(d, bson.E{Key: k, Value: 1})
		}
		return mongo.IndexModel{Keys: d, Options: options.Index().SetUnique(true)}
	}
	plain := func(key string, order int) mongo.IndexModel {
		return mongo.IndexModel{Keys: bson.D{{Key: key, Value: order}}}
	}
	indexes := map[string][]mongo.IndexModel{
		colCategories: {unique("name"), unique("alias")},
		colProducts:   {unique("sku"), plain("category_id", 1), plain("created_at", -1)},
		colCarts:      {unique("user_id")},
		colUsers:      {unique("email")},
		colOprLogs:    {plain("opt_time", -1)},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return pkgerrors.Wrap(err, "create indexes on "+name)
		}
	}
	return nil
}

func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return pkgerrors.Wrap(repository.ErrDuplicate, err.Error())
	default:
		return pkgerrors.Wrap(err, op)
	}
}

func exists(ctx context.Context, col *mongo.Collection, filter bson.M) (bool, error) {
	n, err := col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	return n > 0, translate(err, "count "+col.Name())
}

// MongoCategoryRepository is the mongo implementation of CategoryRepository
type MongoCategoryRepository struct {
	col *mongo.Collection
}

func (r *MongoCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	_, err := r.col.InsertOne(ctx, newCategoryDoc(c))
	return translate(err, "create category")
}

func (r *MongoCategoryRepository) findOne(ctx context.Context, filter bson.M) (*domain.Category, error) {
	var doc categoryDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err, "get category")
	}
	return doc.toDomain(), nil
}

func (r *MongoCategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoCategoryRepository) GetByAlias(ctx context.Context, alias string) (*domain.Category, error) {
	return r.findOne(ctx, bson.M{"alias": alias})
}

func (r *MongoCategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	return exists(ctx, r.col, bson.M{"name": name})
}

func (r *MongoCategoryRepository) ExistsByAlias(ctx context.Context, alias string) (bool, error) {
	return exists(ctx, r.col, bson.M{"alias": alias})
}

func (r *MongoCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *MongoCategoryRepository) ListByIDs(ctx context.Context, ids []int64) ([]*domain.Category, error) {
	if len(ids) == 0 {
		return []*domain.Category{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MongoCategoryRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*domain.Category, error) {
	cur, err := r.col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, translate(err, "list categories")
	}
	var docs []categoryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err, "decode categories")
	}
	rows := make([]*domain.Category, 0, len(docs))
	for i := range docs {
		rows = append(rows, docs[i].toDomain())
	}
	return rows, nil
}

// MongoProductRepository is the mongo implementation of ProductRepository
type MongoProductRepository struct {
	col *mongo.Collection
}

func (r *MongoProductRepository) Create(ctx context.Context, p *domain.Product) error {
	_, err := r.col.InsertOne(ctx, newProductDoc(p))
	return translate(err, "create product")
}

func (r *MongoProductRepository) Update(ctx context.Context, p *domain.Product) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, newProductDoc(p))
	if err != nil {
		return translate(err, "update product")
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MongoProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var doc productDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translate(err, "get product")
	}
	return doc.toDomain(), nil
}

func (r *MongoProductRepository) ExistsBySKU(ctx context.Context, sku string, excludeID int64) (bool, error) {
	return exists(ctx, r.col, bson.M{"sku": sku, "_id": bson.M{"$ne": excludeID}})
}

func (r *MongoProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int64, error) {
	query := bson.M{}
	if filter.Active != nil {
		query["is_active"] = *filter.Active
	}
	if filter.CategoryID != nil {
		query["category_id"] = *filter.CategoryID
	}
	if filter.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"description": re},
		}
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, translate(err, "count products")
	}

	sortCol, ok := repository.ProductSortColumns[filter.SortField]
	if !ok {
		sortCol = "created_at"
	}
	if sortCol == "id" {
		sortCol = "_id"
	}
	order := 1
	if filter.SortDesc {
		order = -1
	}
	sort := bson.D{{Key: sortCol, Value: order}}
	if sortCol != "_id" {
		sort = append(sort, bson.E{Key: "_id", Value: order})
	}
	opts := options.Find().SetSort(sort)
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, translate(err, "list products")
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, translate(err, "decode products")
	}
	rows := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		rows = append(rows, docs[i].toDomain())
	}
	return rows, total, nil
}

// MongoCartRepository is the mongo implementation of CartRepository
type MongoCartRepository struct {
	col *mongo.Collection
}

func (r *MongoCartRepository) GetByUser(ctx context.Context, userID int64) (*domain.Cart, error) {
	var doc cartDoc
	if err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc); err != nil {
		return nil, translate(err, "get cart")
	}
	return doc.toDomain(), nil
}

func (r *MongoCartRepository) Create(ctx context.Context, c *domain.Cart) error {
	_, err := r.col.InsertOne(ctx, newCartDoc(c))
	return translate(err, "create cart")
}

func (r *MongoCartRepository) Save(ctx context.Context, c *domain.Cart) error {
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": c.ID}, newCartDoc(c), options.Replace().SetUpsert(true))
	return translate(err, "save cart")
}

// MongoUserRepository is the mongo implementation of UserRepository
type MongoUserRepository struct {
	col *mongo.Collection
}

func (r *MongoUserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.col.InsertOne(ctx, newUserDoc(u))
	return translate(err, "create user")
}

func (r *MongoUserRepository) Update(ctx context.Context, u *domain.User) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, newUserDoc(u))
	if err != nil {
		return translate(err, "update user")
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err, "get user")
	}
	return doc.toDomain(), nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.col, bson.M{"email": email})
}

func (r *MongoUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, translate(err, "list users")
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err, "decode users")
	}
	rows := make([]*domain.User, 0, len(docs))
	for i := range docs {
		rows = append(rows, docs[i].toDomain())
	}
	return rows, nil
}

// MongoOprLogRepository is the mongo implementation of OprLogRepository
type MongoOprLogRepository struct {
	col *mongo.Collection
}

func (r *MongoOprLogRepository) Create(ctx context.Context, log *domain.SysOprLog) error {
	doc := oprLogDoc(*log)
	_, err := r.col.InsertOne(ctx, &doc)
	return translate(err, "create oprlog")
}

func (r *MongoOprLogRepository) List(ctx context.Context, limit int) ([]*domain.SysOprLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "opt_time", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translate(err, "list oprlogs")
	}
	var docs []oprLogDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err, "decode oprlogs")
	}
	rows := make([]*domain.SysOprLog, 0, len(docs))
	for i := range docs {
		row := domain.SysOprLog(docs[i])
		rows = append(rows, &row)
	}
	return rows, nil
}

func (r *MongoOprLogRepository) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"opt_time": bson.M{"$lt": t}})
	if err != nil {
		return 0, translate(err, "purge oprlogs")
	}
	return res.DeletedCount, nil
}
