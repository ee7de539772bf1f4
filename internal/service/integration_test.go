package service_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"carproban-backend/internal/access"
	"carproban-backend/internal/apperr"
	"carproban-backend/internal/model"
	"carproban-backend/internal/repository"
	"carproban-backend/internal/service"
)

// openTestDB connects to the database named by TEST_DATABASE_URL and resets
// every table. Tests that need it are skipped when the env var is unset.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("set TEST_DATABASE_URL to run integration tests (requires postgres)")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Outlet{},
		&model.Brand{},
		&model.Category{},
		&model.Product{},
		&model.StockEntry{},
		&model.Customer{},
		&model.User{},
		&model.Transfer{},
		&model.TransferItem{},
		&model.Transaction{},
		&model.TransactionItem{},
		&model.TransactionPayment{},
		&model.DocumentCounter{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	tables := []string{
		"transaction_payments", "transaction_items", "transactions",
		"transfer_items", "transfers", "stock_entries", "customers",
		"products", "brands", "categories", "users", "outlets",
		"document_counters",
	}
	for _, table := range tables {
		if err := db.Exec("TRUNCATE TABLE " + table + " CASCADE").Error; err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
	return db
}

// testEnv wires the full service stack against a real database, without a
// websocket hub or redis (both publish paths are nil-safe).
type testEnv struct {
	db          *gorm.DB
	users       repository.UserRepository
	stock       service.StockService
	master      service.MasterService
	transfer    service.TransferService
	transaction service.TransactionService
	receivable  service.ReceivableService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := openTestDB(t)

	userRepo := repository.NewUserRepo(db)
	outletRepo := repository.NewOutletRepo(db)
	brandRepo := repository.NewBrandRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	productRepo := repository.NewProductRepo(db)
	stockRepo := repository.NewStockRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	transferRepo := repository.NewTransferRepo(db)
	transactionRepo := repository.NewTransactionRepo(db)
	seqRepo := repository.NewSequenceRepo(db)

	var events *service.Events

	stockSvc := service.NewStockService(stockRepo, productRepo, outletRepo, db, events)
	return &testEnv{
		db:          db,
		users:       userRepo,
		stock:       stockSvc,
		master:      service.NewMasterService(outletRepo, brandRepo, categoryRepo, productRepo, events),
		transfer:    service.NewTransferService(transferRepo, outletRepo, productRepo, stockRepo, seqRepo, stockSvc, db, events),
		transaction: service.NewTransactionService(transactionRepo, customerRepo, productRepo, outletRepo, seqRepo, stockSvc, db, events),
		receivable:  service.NewReceivableService(transactionRepo, db, events),
	}
}

// seedCatalog creates two outlets, one product, and 10 units in the first
// outlet's ledger at cost 40,000 / sell 50,000.
func (e *testEnv) seedCatalog(t *testing.T) (model.Outlet, model.Outlet, model.Product) {
	t.Helper()

	outletA := model.Outlet{Name: "Outlet Pusat", Address: "Jl. Raya 1", Status: model.OutletActive}
	outletB := model.Outlet{Name: "Outlet Cabang", Address: "Jl. Raya 2", Status: model.OutletActive}
	brand := model.Brand{Name: "Bridgestone"}
	category := model.Category{Name: "Ban Mobil"}
	for _, m := range []interface{}{&outletA, &outletB, &brand, &category} {
		if err := e.db.Create(m).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	product := model.Product{Name: "Turanza T005A", Size: "185/65R15", BrandID: brand.ID, CategoryID: category.ID}
	if err := e.db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	entry := model.StockEntry{
		OutletID:  outletA.ID,
		ProductID: product.ID,
		Quantity:  10,
		CostPrice: decimal.NewFromInt(40000),
		SellPrice: decimal.NewFromInt(50000),
	}
	if err := e.db.Create(&entry).Error; err != nil {
		t.Fatalf("seed stock: %v", err)
	}
	return outletA, outletB, product
}

func outletActor(outletID uuid.UUID) access.Capabilities {
	return access.Resolve(uuid.New(), model.RoleOutletAdmin, &outletID)
}

func (e *testEnv) quantity(t *testing.T, outletID, productID uuid.UUID) int {
	t.Helper()
	qty, err := e.stock.GetQuantity(outletID, productID)
	if err != nil {
		t.Fatalf("GetQuantity: %v", err)
	}
	return qty
}

func TestTransferLifecycleMovesStock(t *testing.T) {
	env := newTestEnv(t)
	outletA, outletB, product := env.seedCatalog(t)
	sender := outletActor(outletA.ID)
	receiver := outletActor(outletB.ID)

	created, err := env.transfer.Create(&service.CreateTransferRequest{
		FromOutletID: outletA.ID,
		ToOutletID:   outletB.ID,
		Date:         time.Now(),
		Items:        []service.TransferItemRequest{{ProductID: product.ID, Quantity: 4}},
	}, sender)
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}
	if created.Status != model.TransferPending {
		t.Fatalf("status = %s, want pending", created.Status)
	}
	if got := env.quantity(t, outletA.ID, product.ID); got != 6 {
		t.Fatalf("source quantity after create = %d, want 6", got)
	}
	// Destination is credited only on completion.
	if got := env.quantity(t, outletB.ID, product.ID); got != 0 {
		t.Fatalf("destination quantity after create = %d, want 0", got)
	}

	if _, err := env.transfer.Transition(created.ID, model.TransferAccepted, receiver); err != nil {
		t.Fatalf("accept: %v", err)
	}
	completed, err := env.transfer.Transition(created.ID, model.TransferCompleted, receiver)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != model.TransferCompleted {
		t.Fatalf("status = %s, want completed", completed.Status)
	}
	if got := env.quantity(t, outletB.ID, product.ID); got != 4 {
		t.Fatalf("destination quantity after complete = %d, want 4", got)
	}

	// Prices travel with the goods on first receipt.
	var entry model.StockEntry
	if err := env.db.Where("outlet_id = ? AND product_id = ?", outletB.ID, product.ID).First(&entry).Error; err != nil {
		t.Fatalf("destination entry: %v", err)
	}
	if !entry.SellPrice.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("destination sell price = %s, want 50000", entry.SellPrice)
	}

	// Completed is terminal.
	if _, err := env.transfer.Transition(created.ID, model.TransferCancelled, sender); err == nil {
		t.Fatal("expected transition out of completed to fail")
	}
}

func TestTransferCancelRestoresStock(t *testing.T) {
	env := newTestEnv(t)
	outletA, outletB, product := env.seedCatalog(t)
	sender := outletActor(outletA.ID)

	created, err := env.transfer.Create(&service.CreateTransferRequest{
		FromOutletID: outletA.ID,
		ToOutletID:   outletB.ID,
		Date:         time.Now(),
		Items:        []service.TransferItemRequest{{ProductID: product.ID, Quantity: 3}},
	}, sender)
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}
	if _, err := env.transfer.Transition(created.ID, model.TransferCancelled, sender); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := env.quantity(t, outletA.ID, product.ID); got != 10 {
		t.Fatalf("source quantity after cancel = %d, want 10", got)
	}
}

func TestTransferInsufficientStockRejected(t *testing.T) {
	env := newTestEnv(t)
	outletA, outletB, product := env.seedCatalog(t)

	_, err := env.transfer.Create(&service.CreateTransferRequest{
		FromOutletID: outletA.ID,
		ToOutletID:   outletB.ID,
		Date:         time.Now(),
		Items:        []service.TransferItemRequest{{ProductID: product.ID, Quantity: 11}},
	}, outletActor(outletA.ID))

	var stockErr *apperr.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	// The rejected transfer must leave the ledger untouched.
	if got := env.quantity(t, outletA.ID, product.ID); got != 10 {
		t.Fatalf("quantity after rejection = %d, want 10", got)
	}
	var count int64
	env.db.Model(&model.Transfer{}).Count(&count)
	if count != 0 {
		t.Fatalf("transfer rows = %d, want 0", count)
	}
}

func TestSaleWithReceivableAndSettlement(t *testing.T) {
	env := newTestEnv(t)
	outletA, _, product := env.seedCatalog(t)
	actor := outletActor(outletA.ID)

	trx, err := env.transaction.Create(&service.CreateTransactionRequest{
		OutletID: outletA.ID,
		Date:     time.Now(),
		Customer: service.CustomerRequest{Name: "Budi", Phone: "0812"},
		Vehicle:  service.VehicleRequest{Plate: "B 1234 CD"},
		Items: []service.SaleItemRequest{
			{ProductID: &product.ID, Name: product.Name, UnitPrice: decimal.NewFromInt(50000), Quantity: 2},
		},
		Discount: decimal.NewFromInt(10000),
		Payments: []service.PaymentRequest{
			{Method: model.PayCash, Amount: decimal.NewFromInt(60000)},
		},
	}, actor)
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if trx.PaymentStatus != model.PaymentUnpaid {
		t.Fatalf("payment status = %s, want unpaid", trx.PaymentStatus)
	}
	if !trx.Remaining.Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("remaining = %s, want 30000", trx.Remaining)
	}
	if got := env.quantity(t, outletA.ID, product.ID); got != 8 {
		t.Fatalf("quantity after sale = %d, want 8", got)
	}

	open, err := env.receivable.ListOpen(actor)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 1 || open[0].TransactionID != trx.ID {
		t.Fatalf("open receivables = %+v, want the new sale", open)
	}

	settled, err := env.receivable.Settle(trx.ID, actor)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !settled.Remaining.IsZero() || settled.Status != model.PaymentPaid {
		t.Fatalf("after settle: remaining=%s status=%s", settled.Remaining, settled.Status)
	}

	// A second settlement finds nothing outstanding.
	if _, err := env.receivable.Settle(trx.ID, actor); err == nil {
		t.Fatal("expected double settlement to fail")
	}
	open, err = env.receivable.ListOpen(actor)
	if err != nil {
		t.Fatalf("list open after settle: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("open receivables after settle = %d, want 0", len(open))
	}
}

func TestCancelSaleRestoresStock(t *testing.T) {
	env := newTestEnv(t)
	outletA, _, product := env.seedCatalog(t)
	actor := outletActor(outletA.ID)

	trx, err := env.transaction.Create(&service.CreateTransactionRequest{
		OutletID: outletA.ID,
		Date:     time.Now(),
		Customer: service.CustomerRequest{Name: "Sari"},
		Items: []service.SaleItemRequest{
			{ProductID: &product.ID, Name: product.Name, UnitPrice: decimal.NewFromInt(50000), Quantity: 5},
		},
		Payments: []service.PaymentRequest{
			{Method: model.PayCash, Amount: decimal.NewFromInt(250000)},
		},
	}, actor)
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if got := env.quantity(t, outletA.ID, product.ID); got != 5 {
		t.Fatalf("quantity after sale = %d, want 5", got)
	}

	cancelled, err := env.transaction.Cancel(trx.ID, actor)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != model.TransactionCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}
	if got := env.quantity(t, outletA.ID, product.ID); got != 10 {
		t.Fatalf("quantity after cancel = %d, want 10", got)
	}

	// Cancelling twice is a no-go.
	if _, err := env.transaction.Cancel(trx.ID, actor); err == nil {
		t.Fatal("expected second cancel to fail")
	}
}

func TestSaleRejectsOversell(t *testing.T) {
	env := newTestEnv(t)
	outletA, _, product := env.seedCatalog(t)

	_, err := env.transaction.Create(&service.CreateTransactionRequest{
		OutletID: outletA.ID,
		Date:     time.Now(),
		Customer: service.CustomerRequest{Name: "Joko"},
		Items: []service.SaleItemRequest{
			{ProductID: &product.ID, Name: product.Name, UnitPrice: decimal.NewFromInt(50000), Quantity: 11},
		},
		Payments: []service.PaymentRequest{
			{Method: model.PayCash, Amount: decimal.NewFromInt(550000)},
		},
	}, outletActor(outletA.ID))

	var stockErr *apperr.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	var count int64
	env.db.Model(&model.Transaction{}).Count(&count)
	if count != 0 {
		t.Fatalf("transaction rows = %d, want 0", count)
	}
}

func TestDocumentNumbersAreSequential(t *testing.T) {
	env := newTestEnv(t)
	outletA, _, product := env.seedCatalog(t)
	actor := outletActor(outletA.ID)

	year := time.Now().Year()
	for i, want := range []string{
		model.FormatDocumentNumber(model.DocKindInvoice, year, 1),
		model.FormatDocumentNumber(model.DocKindInvoice, year, 2),
	} {
		trx, err := env.transaction.Create(&service.CreateTransactionRequest{
			OutletID: outletA.ID,
			Date:     time.Now(),
			Customer: service.CustomerRequest{Name: "Pelanggan"},
			Items: []service.SaleItemRequest{
				{ProductID: &product.ID, Name: product.Name, UnitPrice: decimal.NewFromInt(50000), Quantity: 1},
			},
			Payments: []service.PaymentRequest{
				{Method: model.PayCash, Amount: decimal.NewFromInt(50000)},
			},
		}, actor)
		if err != nil {
			t.Fatalf("sale %d: %v", i, err)
		}
		if trx.Invoice != want {
			t.Fatalf("invoice %d = %s, want %s", i, trx.Invoice, want)
		}
	}
}

func TestOutletScoping(t *testing.T) {
	env := newTestEnv(t)
	outletA, outletB, product := env.seedCatalog(t)

	// Outlet B's admin cannot sell from outlet A.
	_, err := env.transaction.Create(&service.CreateTransactionRequest{
		OutletID: outletA.ID,
		Date:     time.Now(),
		Customer: service.CustomerRequest{Name: "Intrus"},
		Items: []service.SaleItemRequest{
			{ProductID: &product.ID, Name: product.Name, UnitPrice: decimal.NewFromInt(50000), Quantity: 1},
		},
	}, outletActor(outletB.ID))

	var authErr *apperr.AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected authorization error, got %v", err)
	}

	// Nor create a transfer out of outlet A.
	_, err = env.transfer.Create(&service.CreateTransferRequest{
		FromOutletID: outletA.ID,
		ToOutletID:   outletB.ID,
		Date:         time.Now(),
		Items:        []service.TransferItemRequest{{ProductID: product.ID, Quantity: 1}},
	}, outletActor(outletB.ID))
	if !errors.As(err, &authErr) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestDeleteBrandKeepsAuditRow(t *testing.T) {
	env := newTestEnv(t)
	super := access.Resolve(uuid.New(), model.RoleSuperAdmin, nil)

	brand := model.Brand{Name: "Michelin"}
	if err := env.db.Create(&brand).Error; err != nil {
		t.Fatalf("create brand: %v", err)
	}

	if err := env.master.DeleteBrand(brand.ID, super); err != nil {
		t.Fatalf("delete brand: %v", err)
	}

	brands, err := env.master.ListBrands()
	if err != nil {
		t.Fatalf("list brands: %v", err)
	}
	for _, b := range brands {
		if b.ID == brand.ID {
			t.Fatal("deleted brand still listed")
		}
	}

	// The row must survive soft-deleted, with the actor recorded.
	var raw model.Brand
	if err := env.db.Unscoped().First(&raw, "id = ?", brand.ID).Error; err != nil {
		t.Fatalf("audit row gone: %v", err)
	}
	if !raw.DeletedAt.Valid {
		t.Error("deleted_at not set")
	}
	if raw.DeletedBy != super.UserID.String() {
		t.Errorf("deleted_by = %q, want %q", raw.DeletedBy, super.UserID)
	}
}

func TestPasswordResetUpdatesHashAndRotatesSession(t *testing.T) {
	env := newTestEnv(t)

	user := &model.User{
		Email:        "reset@carproban.local",
		FullName:     "Reset Target",
		Role:         model.RoleSuperAdmin,
		IsActive:     true,
		TokenVersion: "before",
	}
	if err := user.SetPassword("old-password"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := env.users.Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("new-password"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := env.users.UpdatePassword(user.ID, string(hashed)); err != nil {
		t.Fatalf("update password: %v", err)
	}
	if err := env.users.UpdateTokenVersion(user.ID, "after"); err != nil {
		t.Fatalf("update token version: %v", err)
	}

	reloaded, err := env.users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.CheckPassword("old-password") {
		t.Error("old password still accepted")
	}
	if !reloaded.CheckPassword("new-password") {
		t.Error("new password rejected")
	}
	if reloaded.TokenVersion != "after" {
		t.Errorf("token version = %q, want rotated", reloaded.TokenVersion)
	}
}
