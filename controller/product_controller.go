package controller

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"embroidery-backend/cache"
	"embroidery-backend/model"
	"embroidery-backend/search"
)

type ProductController struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Search *search.Index
}

const (
	latestCacheKey  = "products:latest"
	productCacheTTL = 5 * time.Minute
)

// storefrontSort maps the sortBy query values the storefront sends.
func storefrontSort(sortBy string) string {
	switch sortBy {
	case "priceLowToHigh":
		return "price ASC"
	case "priceHighToLow":
		return "price DESC"
	case "leastRating":
		return "ratings_average ASC"
	case "averageRating":
		return "ratings_average DESC"
	default:
		return "id DESC"
	}
}

func pageParams(c *fiber.Ctx) (page, limit int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	limit, _ = strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

// ListProducts is the unfiltered listing used by the admin dashboard.
func (pc *ProductController) ListProducts(c *fiber.Ctx) error {
	q := pc.DB.Model(&model.Product{})
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if sort := c.Query("sort"); sort != "" {
		q = q.Order(storefrontSort(sort))
	}

	var products []model.Product
	if err := q.Find(&products).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "query failed"})
	}
	return c.JSON(fiber.Map{"products": products})
}

type pagedResponse struct {
	TotalCount  int64           `json:"totalCount"`
	TotalPages  int             `json:"totalPages"`
	CurrentPage int             `json:"currentPage"`
	Products    []model.Product `json:"products"`
}

func (pc *ProductController) pagedList(c *fiber.Ctx, base *gorm.DB) error {
	page, limit := pageParams(c)

	var totalCount int64
	if err := base.Count(&totalCount).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "query failed"})
	}

	var products []model.Product
	if err := base.
		Order(storefrontSort(c.Query("sortBy"))).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "query failed"})
	}

	if len(products) == 0 {
		return c.Status(404).JSON(fiber.Map{"message": "No products found in this category"})
	}

	return c.JSON(pagedResponse{
		TotalCount:  totalCount,
		TotalPages:  int((totalCount + int64(limit) - 1) / int64(limit)),
		CurrentPage: page,
		Products:    products,
	})
}

// ListDesigns is the paginated storefront listing: purchasable designs only,
// freebies and deleted products excluded.
func (pc *ProductController) ListDesigns(c *fiber.Ctx) error {
	return pc.pagedList(c, pc.DB.Model(&model.Product{}).
		Where("is_deleted = ? AND is_freebie = ?", false, false))
}

func (pc *ProductController) ListByCategory(c *fiber.Ctx) error {
	return pc.pagedList(c, pc.DB.Model(&model.Product{}).
		Where("category = ? AND is_deleted = ? AND is_freebie = ?", c.Params("category"), false, false))
}

func (pc *ProductController) ListFreebies(c *fiber.Ctx) error {
	return pc.pagedList(c, pc.DB.Model(&model.Product{}).
		Where("is_deleted = ? AND is_freebie = ?", false, true))
}

// ListLatest returns the eight newest products, via the read cache when warm.
func (pc *ProductController) ListLatest(c *fiber.Ctx) error {
	var products []model.Product
	if cache.GetJSON(c.UserContext(), pc.Redis, latestCacheKey, &products) {
		return c.JSON(products)
	}

	if err := pc.DB.Where("is_deleted = ?", false).
		Order("id DESC").Limit(8).Find(&products).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "query failed"})
	}
	if len(products) == 0 {
		return c.Status(404).JSON(fiber.Map{"message": "No products found"})
	}

	cache.SetJSON(c.UserContext(), pc.Redis, latestCacheKey, products, productCacheTTL)
	return c.JSON(products)
}

// SearchByName searches Elasticsearch when configured and falls back to a
// database ILIKE match otherwise. Results are always re-read from the DB.
func (pc *ProductController) SearchByName(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return c.Status(400).JSON(fiber.Map{"message": "Please provide a name"})
	}

	var products []model.Product
	if pc.Search.Enabled() {
		ids, err := pc.Search.SearchProducts(c.UserContext(), name)
		if err != nil {
			log.Printf("search failed, falling back to DB: %v", err)
		} else {
			if len(ids) == 0 {
				return c.JSON(fiber.Map{"products": []model.Product{}})
			}
			if err := pc.DB.Where("id IN ? AND is_deleted = ?", ids, false).Find(&products).Error; err != nil {
				return c.Status(500).JSON(fiber.Map{"error": "query failed"})
			}
			return c.JSON(fiber.Map{"products": products})
		}
	}

	if err := pc.DB.Where("LOWER(name) LIKE LOWER(?) AND is_deleted = ?", "%"+name+"%", false).
		Find(&products).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "query failed"})
	}
	return c.JSON(fiber.Map{"products": products})
}

func (pc *ProductController) GetProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}

	var p model.Product
	if err := pc.DB.First(&p, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"message": "Product not found"})
	}
	return c.JSON(fiber.Map{"product": p})
}

func (pc *ProductController) GetProductBySlug(c *fiber.Ctx) error {
	var p model.Product
	if err := pc.DB.Where("slug = ?", c.Params("slug")).First(&p).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"message": "Product not found"})
	}
	return c.JSON(fiber.Map{"product": p})
}

func (pc *ProductController) CreateProduct(c *fiber.Ctx) error {
	var in model.Product
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid payload"})
	}
	in.ID = 0
	in.CreatedAt = time.Now()

	if err := pc.DB.Create(&in).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "create failed"})
	}

	pc.reindex(c, &in)
	cache.Invalidate(c.UserContext(), pc.Redis, latestCacheKey)
	return c.Status(201).JSON(fiber.Map{"product": in})
}

func (pc *ProductController) UpdateProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}

	var p model.Product
	if err := pc.DB.First(&p, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"message": "Product not found"})
	}

	var in map[string]interface{}
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid payload"})
	}
	delete(in, "id")

	if err := pc.DB.Model(&p).Updates(in).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "update failed"})
	}
	if err := pc.DB.First(&p, id).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "update failed"})
	}

	pc.reindex(c, &p)
	cache.Invalidate(c.UserContext(), pc.Redis, latestCacheKey)
	return c.JSON(fiber.Map{"product": p})
}

// DeleteProduct is a soft delete: the row stays for old transactions'
// line-item references.
func (pc *ProductController) DeleteProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid id"})
	}

	var p model.Product
	if err := pc.DB.First(&p, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"message": "Product not found"})
	}

	if err := pc.DB.Model(&p).Update("is_deleted", true).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "delete failed"})
	}

	if err := pc.Search.DeleteProduct(c.UserContext(), p.ID); err != nil {
		log.Printf("failed to remove product %d from index: %v", p.ID, err)
	}
	cache.Invalidate(c.UserContext(), pc.Redis, latestCacheKey)
	return c.SendStatus(204)
}

type bulkUpdateRequest struct {
	IDs    []uint                 `json:"ids"`
	Fields map[string]interface{} `json:"fields"`
}

// BulkUpdate applies the same field set to the selected products, preserving
// each product's current price into original_price first.
func (pc *ProductController) BulkUpdate(c *fiber.Ctx) error {
	var body bulkUpdateRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid payload"})
	}
	if len(body.IDs) == 0 {
		return c.Status(400).JSON(fiber.Map{"message": "Please provide ids"})
	}

	if err := pc.bulkApply(c, pc.DB.Where("id IN ?", body.IDs), body.Fields); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "update failed"})
	}
	return c.JSON(fiber.Map{"message": "Products updated successfully"})
}

func (pc *ProductController) BulkUpdateAll(c *fiber.Ctx) error {
	var body bulkUpdateRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid payload"})
	}

	if err := pc.bulkApply(c, pc.DB, body.Fields); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "update failed"})
	}
	return c.JSON(fiber.Map{"message": "All products updated successfully"})
}

func (pc *ProductController) bulkApply(c *fiber.Ctx, scope *gorm.DB, fields map[string]interface{}) error {
	delete(fields, "id")

	var products []model.Product
	if err := scope.Find(&products).Error; err != nil {
		return err
	}

	err := pc.DB.Transaction(func(dbtx *gorm.DB) error {
		for _, p := range products {
			updates := map[string]interface{}{"original_price": p.Price}
			for k, v := range fields {
				updates[k] = v
			}
			if err := dbtx.Model(&model.Product{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i := range products {
		pc.reindex(c, &products[i])
	}
	cache.Invalidate(c.UserContext(), pc.Redis, latestCacheKey)
	return nil
}

func (pc *ProductController) reindex(c *fiber.Ctx, p *model.Product) {
	if err := pc.Search.IndexProduct(c.UserContext(), p); err != nil {
		log.Printf("failed to index product %d: %v", p.ID, err)
	}
}
