package http

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/watersafety/asset-management-backend/internal/domain"
	"github.com/watersafety/asset-management-backend/internal/export"
	"github.com/watersafety/asset-management-backend/internal/notify"
	"github.com/watersafety/asset-management-backend/internal/storage"
)

// swapped in tests to pin the expiry-alert clock
var timeNow = time.Now

// Archiver retains a copy of each generated template. A nil Archiver
// disables retention.
type Archiver interface {
	ArchiveTemplate(ctx context.Context, filename string, data []byte, contentType string) error
}

// Deps carries everything the handlers need, constructed once at startup.
type Deps struct {
	Store      storage.Store
	Pager      storage.AssetPager
	Notifier   notify.Notifier
	Archiver   Archiver
	Production bool
}

func Register(app *fiber.App, deps *Deps) {
	api := app.Group("/api")

	api.Get("/assets", deps.listAssets)
	api.Post("/assets", deps.createAsset)
	api.Post("/assets/bulk", deps.bulkCreateAssets)
	api.Post("/assets/cleanup-blank", deps.cleanupBlankAssets)
	api.Get("/assets/:id", deps.getAsset)
	api.Put("/assets/:id", deps.updateAsset)
	api.Delete("/assets/:id", deps.deleteAsset)

	api.Get("/audit-logs", deps.getAuditLogs)

	api.Get("/asset-types", deps.listAssetTypes)
	api.Post("/asset-types", deps.createAssetType)
	api.Delete("/asset-types/:id", deps.deleteAssetType)

	api.Get("/bulk-update-template", deps.bulkUpdateTemplate)
	api.Options("/bulk-update-template", bulkUpdateTemplateOptions)
}

func (d *Deps) listAssets(c *fiber.Ctx) error {
	assets, err := d.Store.GetAllAssets(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("list assets failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(assets)
}

func (d *Deps) getAsset(c *fiber.Ctx) error {
	asset, err := d.Store.GetAssetByID(c.Context(), c.Params("id"))
	if err != nil {
		log.Error().Err(err).Msg("get asset failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if asset == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "asset not found"})
	}
	return c.JSON(asset)
}

func (d *Deps) createAsset(c *fiber.Ctx) error {
	var asset domain.Asset
	if err := c.BodyParser(&asset); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	user := currentUser(c)
	if asset.CreatedBy == "" {
		asset.CreatedBy = user.Name
	}
	if asset.ModifiedBy == "" {
		asset.ModifiedBy = user.Name
	}

	created, err := d.Store.CreateAsset(c.Context(), asset)
	if err != nil {
		log.Error().Err(err).Msg("create asset failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	d.notifyAfterWrite(c.Context(), *created, true)
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (d *Deps) updateAsset(c *fiber.Ctx) error {
	var updates domain.AssetUpdate
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if updates.ModifiedBy == nil {
		name := currentUser(c).Name
		updates.ModifiedBy = &name
	}

	updated, err := d.Store.UpdateAsset(c.Context(), c.Params("id"), updates)
	if err != nil {
		log.Error().Err(err).Msg("update asset failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if updated == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "asset not found"})
	}

	d.notifyAfterWrite(c.Context(), *updated, false)
	return c.JSON(updated)
}

func (d *Deps) deleteAsset(c *fiber.Ctx) error {
	removed, err := d.Store.DeleteAsset(c.Context(), c.Params("id"))
	if err != nil {
		log.Error().Err(err).Msg("delete asset failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !removed {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "asset not found"})
	}
	return c.JSON(fiber.Map{"success": true})
}

func (d *Deps) bulkCreateAssets(c *fiber.Ctx) error {
	var assets []domain.Asset
	if err := c.BodyParser(&assets); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	user := currentUser(c)
	for i := range assets {
		if assets[i].CreatedBy == "" {
			assets[i].CreatedBy = user.Name
		}
		if assets[i].ModifiedBy == "" {
			assets[i].ModifiedBy = user.Name
		}
	}

	created, err := d.Store.BulkCreateAssets(c.Context(), assets)
	if err != nil {
		log.Error().Err(err).Msg("bulk create failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (d *Deps) cleanupBlankAssets(c *fiber.Ctx) error {
	count, err := d.Store.CleanupBlankAssets(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("cleanup failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"deletedCount": count})
}

func (d *Deps) getAuditLogs(c *fiber.Ctx) error {
	logs, err := d.Store.GetAuditLogs(c.Context(), c.Query("assetId"))
	if err != nil {
		log.Error().Err(err).Msg("get audit logs failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(logs)
}

func (d *Deps) listAssetTypes(c *fiber.Ctx) error {
	assetTypes, err := d.Store.GetAllAssetTypes(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("list asset types failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(assetTypes)
}

func (d *Deps) createAssetType(c *fiber.Ctx) error {
	var body struct {
		Label string `json:"label"`
	}
	if err := c.BodyParser(&body); err != nil || body.Label == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "label is required"})
	}

	assetType, err := d.Store.CreateAssetType(c.Context(), body.Label, currentUser(c).Name)
	if err != nil {
		log.Error().Err(err).Msg("create asset type failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(assetType)
}

func (d *Deps) deleteAssetType(c *fiber.Ctx) error {
	removed, err := d.Store.DeleteAssetType(c.Context(), c.Params("id"))
	if err != nil {
		log.Error().Err(err).Msg("delete asset type failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !removed {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "asset type not found"})
	}
	return c.JSON(fiber.Map{"success": true})
}

func setCORSHeaders(c *fiber.Ctx) {
	c.Set("Access-Control-Allow-Origin", "*")
	c.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	c.Set("Access-Control-Allow-Headers", "Content-Type")
}

func (d *Deps) bulkUpdateTemplate(c *fiber.Ctx) error {
	format := c.Query("format", export.FormatCSV)
	includeData := c.Query("includeData") == "true"

	gen := &export.Generator{Source: d.Pager}
	doc, err := gen.Generate(c.Context(), format, includeData)
	if err != nil {
		log.Error().Err(err).Str("format", format).Msg("template generation failed")
		setCORSHeaders(c)
		body := fiber.Map{
			"success": false,
			"error":   err.Error(),
		}
		if !d.Production {
			body["details"] = fiber.Map{
				"timestamp":   domain.NowISO(),
				"format":      format,
				"includeData": includeData,
			}
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}

	if d.Archiver != nil {
		if err := d.Archiver.ArchiveTemplate(c.Context(), doc.Filename, doc.Data, doc.ContentType); err != nil {
			log.Error().Err(err).Str("filename", doc.Filename).Msg("template archive failed")
		}
	}

	c.Set("Content-Type", doc.ContentType)
	c.Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Set("Content-Length", strconv.Itoa(len(doc.Data)))
	c.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Set("Pragma", "no-cache")
	c.Set("Expires", "0")
	setCORSHeaders(c)
	return c.Send(doc.Data)
}

func bulkUpdateTemplateOptions(c *fiber.Ctx) error {
	setCORSHeaders(c)
	return c.SendStatus(fiber.StatusOK)
}

// notifyAfterWrite fires best-effort notifications. Failures are logged and
// never affect the caller's result.
func (d *Deps) notifyAfterWrite(ctx context.Context, asset domain.Asset, created bool) {
	if d.Notifier == nil {
		return
	}
	if created {
		if err := d.Notifier.AssetCreated(ctx, asset); err != nil {
			log.Error().Err(err).Str("assetId", asset.ID).Msg("asset created notification failed")
		}
	}
	if notify.FilterExpiringSoon(asset, timeNow()) {
		if err := d.Notifier.FilterExpiryAlert(ctx, asset); err != nil {
			log.Error().Err(err).Str("assetId", asset.ID).Msg("filter expiry notification failed")
		}
	}
}
