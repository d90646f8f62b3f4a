package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRepositoryTest(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Cart{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func createProduct(t *testing.T, repo *GormProductRepository, slug string, sortOrder int, inStock bool) *models.Product {
	t.Helper()
	product := &models.Product{
		Slug:        slug,
		Name:        slug,
		PriceAmount: models.NewMoneyFromFloat(99.99),
		InStock:     inStock,
		SortOrder:   sortOrder,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestProductListOrderAndFilter(t *testing.T) {
	db := setupRepositoryTest(t, "product_list")
	repo := NewProductRepository(db)
	createProduct(t, repo, "zeta-watch", 2, true)
	createProduct(t, repo, "alpha-phone", 1, true)
	createProduct(t, repo, "omega-case", 3, false)

	products, err := repo.List(ProductListFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	if products[0].Slug != "alpha-phone" || products[1].Slug != "zeta-watch" {
		t.Fatalf("unexpected sort order: %s, %s", products[0].Slug, products[1].Slug)
	}

	inStock, err := repo.List(ProductListFilter{InStockOnly: true})
	if err != nil {
		t.Fatalf("list in-stock failed: %v", err)
	}
	if len(inStock) != 2 {
		t.Fatalf("expected 2 in-stock products, got %d", len(inStock))
	}

	matched, err := repo.List(ProductListFilter{Search: "phone"})
	if err != nil {
		t.Fatalf("list search failed: %v", err)
	}
	if len(matched) != 1 || matched[0].Slug != "alpha-phone" {
		t.Fatalf("unexpected search result: %+v", matched)
	}
}

func TestProductGetBySlugAbsent(t *testing.T) {
	db := setupRepositoryTest(t, "product_absent")
	repo := NewProductRepository(db)

	product, err := repo.GetBySlug("no-such-product")
	if err != nil {
		t.Fatalf("get by slug failed: %v", err)
	}
	if product != nil {
		t.Fatalf("expected nil for absent slug, got %+v", product)
	}
}

func TestProductListBySlugs(t *testing.T) {
	db := setupRepositoryTest(t, "product_by_slugs")
	repo := NewProductRepository(db)
	createProduct(t, repo, "alpha-phone", 1, true)
	createProduct(t, repo, "zeta-watch", 2, true)

	products, err := repo.ListBySlugs([]string{"alpha-phone", "missing"})
	if err != nil {
		t.Fatalf("list by slugs failed: %v", err)
	}
	if len(products) != 1 || products[0].Slug != "alpha-phone" {
		t.Fatalf("unexpected result: %+v", products)
	}

	empty, err := repo.ListBySlugs(nil)
	if err != nil {
		t.Fatalf("list with nil slugs failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty result, got %+v", empty)
	}
}

func TestCartSaveReplacesBlob(t *testing.T) {
	db := setupRepositoryTest(t, "cart_save")
	repo := NewCartRepository(db)

	blob, err := models.EncodeCartLines([]models.CartLine{{ProductKey: "alpha-phone", Quantity: 1}})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	cart := &models.Cart{Token: "tok-1", SchemaVersion: 2, ItemsJSON: blob}
	if err := repo.Save(cart); err != nil {
		t.Fatalf("initial save failed: %v", err)
	}

	updated, err := models.EncodeCartLines([]models.CartLine{{ProductKey: "alpha-phone", Quantity: 4}})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	cart.ItemsJSON = updated
	if err := repo.Save(cart); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	loaded, err := repo.GetByToken("tok-1")
	if err != nil {
		t.Fatalf("get by token failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected cart")
	}
	lines, err := models.DecodeCartLines(loaded.ItemsJSON)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 4 {
		t.Fatalf("expected replaced blob with quantity 4, got %+v", lines)
	}

	var count int64
	db.Model(&models.Cart{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected single cart row, got %d", count)
	}
}

func TestCartDeleteByToken(t *testing.T) {
	db := setupRepositoryTest(t, "cart_delete")
	repo := NewCartRepository(db)

	if err := repo.Save(&models.Cart{Token: "tok-2", SchemaVersion: 2}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := repo.DeleteByToken("tok-2"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	cart, err := repo.GetByToken("tok-2")
	if err != nil {
		t.Fatalf("get after delete failed: %v", err)
	}
	if cart != nil {
		t.Fatalf("expected nil after delete, got %+v", cart)
	}
}
