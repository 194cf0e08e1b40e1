package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/permission"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
)

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// ── company ──────────────────────────────────────────────────────────────────

type companyRepo struct{ s *Store }

func (r companyRepo) Get(_ context.Context) (*entity.Company, error) {
	defer r.s.lock()()
	c, ok := r.s.db.st.companies[r.s.tenant]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r companyRepo) Update(_ context.Context, c *entity.Company) error {
	defer r.s.lock()()
	if _, ok := r.s.db.st.companies[r.s.tenant]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	cp.ID = r.s.tenant
	r.s.db.st.companies[r.s.tenant] = cp
	return nil
}

// ── profiles ─────────────────────────────────────────────────────────────────

type profileRepo struct{ s *Store }

func (r profileRepo) Create(_ context.Context, p *entity.Profile) error {
	defer r.s.lock()()
	for _, existing := range r.s.db.st.profiles {
		if strings.EqualFold(existing.Email, p.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	cp := *p
	cp.CompanyID = r.s.tenant
	r.s.db.st.profiles[cp.ID] = cp
	return nil
}

func (r profileRepo) GetByID(_ context.Context, id string) (*entity.Profile, error) {
	defer r.s.lock()()
	p, ok := r.s.db.st.profiles[id]
	if !ok || p.CompanyID != r.s.tenant {
		return nil, nil
	}
	return &p, nil
}

func (r profileRepo) List(_ context.Context, limit, offset int) ([]*entity.Profile, error) {
	defer r.s.lock()()
	var list []*entity.Profile
	for _, p := range r.s.db.st.profiles {
		if p.CompanyID == r.s.tenant {
			p := p
			list = append(list, &p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Email < list[j].Email })
	return page(list, limit, offset), nil
}

func (r profileRepo) UpdateRole(_ context.Context, id string, role permission.Role) error {
	return r.update(id, func(p *entity.Profile) { p.Role = role })
}

func (r profileRepo) SetActive(_ context.Context, id string, active bool) error {
	return r.update(id, func(p *entity.Profile) { p.Active = active })
}

func (r profileRepo) update(id string, fn func(p *entity.Profile)) error {
	defer r.s.lock()()
	p, ok := r.s.db.st.profiles[id]
	if !ok || p.CompanyID != r.s.tenant {
		return domain.ErrNotFound
	}
	fn(&p)
	p.UpdatedAt = time.Now()
	r.s.db.st.profiles[id] = p
	return nil
}

// ── products ─────────────────────────────────────────────────────────────────

type productRepo struct{ s *Store }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.s.lock()()
	for _, existing := range r.s.db.st.products {
		if existing.CompanyID == r.s.tenant && strings.EqualFold(existing.SKU, p.SKU) {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	cp.CompanyID = r.s.tenant
	r.s.db.st.products[cp.ID] = cp
	return nil
}

func (r productRepo) get(id string) (entity.Product, bool) {
	p, ok := r.s.db.st.products[id]
	if !ok || p.CompanyID != r.s.tenant {
		return entity.Product{}, false
	}
	return p, true
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.s.lock()()
	p, ok := r.get(id)
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r productRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	defer r.s.lock()()
	for _, p := range r.s.db.st.products {
		if p.CompanyID == r.s.tenant && strings.EqualFold(p.SKU, sku) {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r productRepo) Update(_ context.Context, p *entity.Product) error {
	defer r.s.lock()()
	if _, ok := r.get(p.ID); !ok {
		return domain.ErrNotFound
	}
	cp := *p
	cp.CompanyID = r.s.tenant
	r.s.db.st.products[cp.ID] = cp
	return nil
}

func (r productRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	defer r.s.lock()()
	var list []*entity.Product
	for _, p := range r.s.db.st.products {
		if p.CompanyID != r.s.tenant {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.LowStock && !p.IsLowStock() {
			continue
		}
		p := p
		list = append(list, &p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, f.Limit, f.Offset), nil
}

func (r productRepo) Delete(_ context.Context, id string) error {
	defer r.s.lock()()
	if _, ok := r.get(id); !ok {
		return domain.ErrNotFound
	}
	delete(r.s.db.st.products, id)
	return nil
}

func (r productRepo) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	defer r.s.lock()()
	p, ok := r.get(id)
	if !ok {
		return domain.ErrNotFound
	}
	p.Cost = cost
	p.UpdatedAt = time.Now()
	r.s.db.st.products[id] = p
	return nil
}

func (r productRepo) IncrementStock(_ context.Context, id string, qty decimal.Decimal) (decimal.Decimal, error) {
	defer r.s.lock()()
	p, ok := r.get(id)
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	p.Stock = p.Stock.Add(qty)
	p.UpdatedAt = time.Now()
	r.s.db.st.products[id] = p
	return p.Stock, nil
}

func (r productRepo) DecrementStock(_ context.Context, id string, qty decimal.Decimal) (decimal.Decimal, error) {
	defer r.s.lock()()
	p, ok := r.get(id)
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	if p.Stock.LessThan(qty) {
		return p.Stock, domain.ErrInsufficientStock
	}
	p.Stock = p.Stock.Sub(qty)
	p.UpdatedAt = time.Now()
	r.s.db.st.products[id] = p
	return p.Stock, nil
}

// ── movements ────────────────────────────────────────────────────────────────

type movementRepo struct{ s *Store }

func (r movementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	defer r.s.lock()()
	cp := *m
	cp.CompanyID = r.s.tenant
	r.s.db.st.movements = append(r.s.db.st.movements, cp)
	return nil
}

func (r movementRepo) filter(keep func(m entity.InventoryMovement) bool) []*entity.InventoryMovement {
	var list []*entity.InventoryMovement
	for _, m := range r.s.db.st.movements {
		if m.CompanyID == r.s.tenant && keep(m) {
			m := m
			list = append(list, &m)
		}
	}
	return list
}

func (r movementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	defer r.s.lock()()
	list := r.filter(func(m entity.InventoryMovement) bool { return m.ProductID == productID })
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}

func (r movementRepo) ListByReference(_ context.Context, reference string) ([]*entity.InventoryMovement, error) {
	defer r.s.lock()()
	return r.filter(func(m entity.InventoryMovement) bool { return m.Reference == reference }), nil
}

// ── sales ────────────────────────────────────────────────────────────────────

type saleRepo struct{ s *Store }

func copySale(s entity.Sale) entity.Sale {
	s.Items = append([]entity.SaleItem(nil), s.Items...)
	if s.Customer != nil {
		c := *s.Customer
		s.Customer = &c
	}
	if s.AnnulledAt != nil {
		t := *s.AnnulledAt
		s.AnnulledAt = &t
	}
	return s
}

func (r saleRepo) Create(_ context.Context, sale *entity.Sale) error {
	defer r.s.lock()()
	if sale.ClientRef != "" {
		for _, existing := range r.s.db.st.sales {
			if existing.CompanyID == r.s.tenant && existing.ClientRef == sale.ClientRef {
				return domain.ErrDuplicate
			}
		}
	}
	cp := copySale(*sale)
	cp.CompanyID = r.s.tenant
	r.s.db.st.sales[cp.ID] = cp
	return nil
}

func (r saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	defer r.s.lock()()
	s, ok := r.s.db.st.sales[id]
	if !ok || s.CompanyID != r.s.tenant {
		return nil, nil
	}
	cp := copySale(s)
	return &cp, nil
}

func (r saleRepo) GetByClientRef(_ context.Context, clientRef string) (*entity.Sale, error) {
	defer r.s.lock()()
	for _, s := range r.s.db.st.sales {
		if s.CompanyID == r.s.tenant && clientRef != "" && s.ClientRef == clientRef {
			cp := copySale(s)
			return &cp, nil
		}
	}
	return nil, nil
}

func (r saleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	defer r.s.lock()()
	var list []*entity.Sale
	for _, s := range r.s.db.st.sales {
		if s.CompanyID != r.s.tenant {
			continue
		}
		if f.CashierID != "" && s.CashierID != f.CashierID {
			continue
		}
		if f.From != nil && s.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !s.CreatedAt.Before(*f.To) {
			continue
		}
		cp := copySale(s)
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, f.Limit, f.Offset), nil
}

func (r saleRepo) MarkAnnulled(_ context.Context, id, by string, at time.Time) error {
	defer r.s.lock()()
	s, ok := r.s.db.st.sales[id]
	if !ok || s.CompanyID != r.s.tenant {
		return domain.ErrNotFound
	}
	if s.Annulled {
		return domain.ErrConflict
	}
	s.Annulled = true
	s.AnnulledAt = &at
	s.AnnulledBy = by
	s.UpdatedAt = at
	r.s.db.st.sales[id] = s
	return nil
}

// ── recipes / production ─────────────────────────────────────────────────────

type recipeRepo struct{ s *Store }

func copyRecipe(r entity.Recipe) entity.Recipe {
	r.Ingredients = append([]entity.RecipeIngredient(nil), r.Ingredients...)
	return r
}

func (r recipeRepo) Create(_ context.Context, rec *entity.Recipe) error {
	defer r.s.lock()()
	cp := copyRecipe(*rec)
	cp.CompanyID = r.s.tenant
	r.s.db.st.recipes[cp.ID] = cp
	return nil
}

func (r recipeRepo) GetByID(_ context.Context, id string) (*entity.Recipe, error) {
	defer r.s.lock()()
	rec, ok := r.s.db.st.recipes[id]
	if !ok || rec.CompanyID != r.s.tenant {
		return nil, nil
	}
	cp := copyRecipe(rec)
	return &cp, nil
}

func (r recipeRepo) List(_ context.Context, limit, offset int) ([]*entity.Recipe, error) {
	defer r.s.lock()()
	var list []*entity.Recipe
	for _, rec := range r.s.db.st.recipes {
		if rec.CompanyID == r.s.tenant {
			cp := copyRecipe(rec)
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

type productionRepo struct{ s *Store }

func (r productionRepo) Create(_ context.Context, b *entity.ProductionBatch) error {
	defer r.s.lock()()
	cp := *b
	cp.CompanyID = r.s.tenant
	r.s.db.st.batches = append(r.s.db.st.batches, cp)
	return nil
}

func (r productionRepo) List(_ context.Context, limit, offset int) ([]*entity.ProductionBatch, error) {
	defer r.s.lock()()
	var list []*entity.ProductionBatch
	for _, b := range r.s.db.st.batches {
		if b.CompanyID == r.s.tenant {
			b := b
			list = append(list, &b)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}

// ── analytics ────────────────────────────────────────────────────────────────

type analyticsRepo struct{ s *Store }

func (r analyticsRepo) each(cashierID string, start, end time.Time, fn func(s entity.Sale)) {
	for _, s := range r.s.db.st.sales {
		if s.CompanyID != r.s.tenant || s.Annulled {
			continue
		}
		if cashierID != "" && s.CashierID != cashierID {
			continue
		}
		if s.CreatedAt.Before(start) || !s.CreatedAt.Before(end) {
			continue
		}
		fn(s)
	}
}

func (r analyticsRepo) GetSalesMetrics(_ context.Context, cashierID string, start, end time.Time) (repository.SalesMetrics, error) {
	defer r.s.lock()()
	out := repository.SalesMetrics{Revenue: decimal.Zero, COGS: decimal.Zero}
	r.each(cashierID, start, end, func(s entity.Sale) {
		out.SalesCount++
		out.Revenue = out.Revenue.Add(s.Total)
		for _, it := range s.Items {
			if p, ok := r.s.db.st.products[it.ProductID]; ok {
				out.COGS = out.COGS.Add(it.Quantity.Mul(p.Cost))
			}
		}
	})
	return out, nil
}

func (r analyticsRepo) GetTopProducts(_ context.Context, cashierID string, start, end time.Time, limit int) ([]repository.TopProductResult, error) {
	defer r.s.lock()()
	acc := make(map[string]*repository.TopProductResult)
	r.each(cashierID, start, end, func(s entity.Sale) {
		for _, it := range s.Items {
			t, ok := acc[it.ProductID]
			if !ok {
				t = &repository.TopProductResult{ProductID: it.ProductID, ProductName: it.ProductName}
				acc[it.ProductID] = t
			}
			t.QuantitySold = t.QuantitySold.Add(it.Quantity)
			t.Revenue = t.Revenue.Add(it.Subtotal)
		}
	})
	list := make([]repository.TopProductResult, 0, len(acc))
	for _, t := range acc {
		list = append(list, *t)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Revenue.Equal(list[j].Revenue) {
			return list[i].Revenue.GreaterThan(list[j].Revenue)
		}
		return list[i].ProductName < list[j].ProductName
	})
	return page(list, limit, 0), nil
}

func (r analyticsRepo) GetPaymentBreakdown(_ context.Context, cashierID string, start, end time.Time) ([]repository.PaymentMethodResult, error) {
	defer r.s.lock()()
	acc := make(map[string]*repository.PaymentMethodResult)
	r.each(cashierID, start, end, func(s entity.Sale) {
		t, ok := acc[s.PaymentMethod]
		if !ok {
			t = &repository.PaymentMethodResult{PaymentMethod: s.PaymentMethod}
			acc[s.PaymentMethod] = t
		}
		t.SalesCount++
		t.Total = t.Total.Add(s.Total)
	})
	list := make([]repository.PaymentMethodResult, 0, len(acc))
	for _, t := range acc {
		list = append(list, *t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].PaymentMethod < list[j].PaymentMethod })
	return list, nil
}
