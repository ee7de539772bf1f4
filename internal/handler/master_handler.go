package handler

import (
	"github.com/gofiber/fiber/v2"

	"carproban-backend/internal/middleware"
	"carproban-backend/internal/model"
	"carproban-backend/internal/service"
)

// MasterHandler serves the super-admin master-data surface: outlets, brands,
// categories, products and per-outlet stock prices.
type MasterHandler struct {
	master service.MasterService
	stock  service.StockService
}

func NewMasterHandler(master service.MasterService, stock service.StockService) *MasterHandler {
	return &MasterHandler{master: master, stock: stock}
}

// ---- Outlets ----

func (h *MasterHandler) CreateOutlet(c *fiber.Ctx) error {
	var outlet model.Outlet
	if err := c.BodyParser(&outlet); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if err := h.master.CreateOutlet(&outlet, middleware.Capabilities(c)); err != nil {
		return writeError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Outlet created", "data": outlet})
}

func (h *MasterHandler) UpdateOutlet(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid outlet ID"})
	}
	var outlet model.Outlet
	if err := c.BodyParser(&outlet); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	updated, err := h.master.UpdateOutlet(id, &outlet, middleware.Capabilities(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Outlet updated", "data": updated})
}

func (h *MasterHandler) DeleteOutlet(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid outlet ID"})
	}
	if err := h.master.DeleteOutlet(id, middleware.Capabilities(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Outlet deleted"})
}

func (h *MasterHandler) ListOutlets(c *fiber.Ctx) error {
	outlets, err := h.master.ListOutlets()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(outlets)
}

// ---- Brands ----

func (h *MasterHandler) CreateBrand(c *fiber.Ctx) error {
	var brand model.Brand
	if err := c.BodyParser(&brand); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if err := h.master.CreateBrand(&brand, middleware.Capabilities(c)); err != nil {
		return writeError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Brand created", "data": brand})
}

func (h *MasterHandler) DeleteBrand(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid brand ID"})
	}
	if err := h.master.DeleteBrand(id, middleware.Capabilities(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Brand deleted"})
}

func (h *MasterHandler) ListBrands(c *fiber.Ctx) error {
	brands, err := h.master.ListBrands()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(brands)
}

// ---- Categories ----

func (h *MasterHandler) CreateCategory(c *fiber.Ctx) error {
	var category model.Category
	if err := c.BodyParser(&category); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if err := h.master.CreateCategory(&category, middleware.Capabilities(c)); err != nil {
		return writeError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Category created", "data": category})
}

func (h *MasterHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid category ID"})
	}
	if err := h.master.DeleteCategory(id, middleware.Capabilities(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}

func (h *MasterHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.master.ListCategories()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(categories)
}

// ---- Products ----

func (h *MasterHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if err := h.master.CreateProduct(&product, middleware.Capabilities(c)); err != nil {
		return writeError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *MasterHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	updated, err := h.master.UpdateProduct(id, &product, middleware.Capabilities(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *MasterHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	if err := h.master.DeleteProduct(id, middleware.Capabilities(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

func (h *MasterHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.master.ListProducts()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(products)
}

// ---- Stock ----

func (h *MasterHandler) ListStocks(c *fiber.Ctx) error {
	caps := middleware.Capabilities(c)
	if caps.OutletID != nil {
		stocks, err := h.stock.ListByOutlet(*caps.OutletID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(stocks)
	}
	stocks, err := h.stock.ListAll()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stocks)
}

func (h *MasterHandler) UpsertStock(c *fiber.Ctx) error {
	var req service.UpsertStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	entry, err := h.stock.Upsert(&req, middleware.Capabilities(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock updated", "data": entry})
}
