package controllers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/repositories"
	"github.com/shashiranjanraj/rigparts/app/resources"
	"github.com/shashiranjanraj/rigparts/app/services"
	"github.com/shashiranjanraj/rigparts/config"
	"github.com/shashiranjanraj/rigparts/pkg/ctx"
	"github.com/shashiranjanraj/rigparts/pkg/resource"
)

type CatalogController struct {
	catalog *services.CatalogService
}

func NewCatalogController(db *gorm.DB) *CatalogController {
	return &CatalogController{catalog: services.NewCatalogService(db)}
}

func (cc *CatalogController) Categories(c *ctx.Context) {
	cats, err := cc.catalog.Categories(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.Collection(resources.CategoryResource{}, cats))
}

func filterFrom(c *ctx.Context) repositories.ProductFilter {
	return repositories.ProductFilter{
		CategorySlug: c.Query("category"),
		Kind:         c.Query("kind"),
		Stock:        c.Query("stock"),
		Search:       c.Query("q"),
		Page:         c.QueryInt("page", 1),
		Limit:        c.QueryInt("limit", 20),
	}
}

// Index lists products priced for the caller.
func (cc *CatalogController) Index(c *ctx.Context) {
	ps, pg, err := cc.catalog.Products(c.Context(), filterFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(resource.Collection(resources.ProductResource{Viewer: viewer(c)}, ps), pg)
}

func (cc *CatalogController) Show(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	p, err := cc.catalog.Product(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.ProductResource{Viewer: viewer(c)}.ToArray(p))
}

// ── Admin ────────────────────────────────────────────────────────────────────

func (cc *CatalogController) AdminIndex(c *ctx.Context) {
	ps, pg, err := cc.catalog.Products(c.Context(), filterFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(resource.Collection(resources.AdminProductResource{}, ps), pg)
}

func (cc *CatalogController) Store(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := cc.catalog.SaveProduct(c.Context(), 0, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(resources.AdminProductResource{}.ToArray(p))
}

func (cc *CatalogController) Update(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := cc.catalog.SaveProduct(c.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.AdminProductResource{}.ToArray(p))
}

func (cc *CatalogController) Destroy(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := cc.catalog.DeleteProduct(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage accepts a multipart "image" file and appends it to the
// product's gallery.
func (cc *CatalogController) UploadImage(c *ctx.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	maxBytes := int64(config.Int("MAX_UPLOAD_BYTES", 8<<20))
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, maxBytes)
	if err := c.R.ParseMultipartForm(maxBytes); err != nil {
		c.Error(http.StatusBadRequest, "The upload must be a multipart form under the size limit.")
		return
	}
	file, header, err := c.R.FormFile("image")
	if err != nil {
		c.ValidationError(map[string]string{"image": "The image field is required."})
		return
	}
	defer file.Close()

	p, err := cc.catalog.AttachImage(c.Context(), id, header.Filename, file, header.Header.Get("Content-Type"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.AdminProductResource{}.ToArray(p))
}
