package bootstrap

import (
	"context"
	"fmt"
	"sync"

	"catalog-bootstrapper/core/reconcile"
	"catalog-bootstrapper/core/reference"
	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/status"

	"go.uber.org/zap"
)

const mutationCreateItem = `mutation CREATE_%[1]s($input: Create%[2]sInput!, $language: String!) {
  %[3]s {
    create(input: $input, language: $language) { id }
  }
}`

const mutationUpdateItemName = `mutation UPDATE_%[1]s($id: ID!, $input: Update%[2]sInput!, $language: String!) {
  %[3]s {
    update(id: $id, input: $input, language: $language) { id }
  }
}`

const mutationPublishItem = `mutation PUBLISH_ITEM($id: ID!, $language: String!) {
  item {
    publish(id: $id, language: $language) { id }
  }
}`

var itemTypeNames = map[spec.ShapeType][2]string{
	spec.ShapeProduct:  {"PRODUCT", "Product"},
	spec.ShapeDocument: {"DOCUMENT", "Document"},
	spec.ShapeFolder:   {"FOLDER", "Folder"},
}

func itemMutation(template string, t spec.ShapeType) string {
	names := itemTypeNames[t]
	return fmt.Sprintf(template, names[0], names[1], string(t))
}

type pendingItem struct {
	item       spec.Item
	parentPath string
	parentID   string
}

// SetItems walks the item tree breadth first and creates every item that cannot be
// resolved. Children of an item that could be neither resolved nor created are skipped.
func (b *Bootstrapper) SetItems(ctx context.Context) error {
	desired := b.currentSpec().Items
	return b.runArea(ctx, status.Items, func(ctx context.Context, sess *Session, rep *areaReporter) error {
		if desired == nil {
			reconcile.NewTracker(0, rep).Complete()
			return nil
		}

		if err := loadItemDependencies(ctx, sess); err != nil {
			return err
		}

		total := spec.CountItems(*desired)
		if total > 0 {
			rep.Message(fmt.Sprintf("Processing %d item(s)...", total))
		}
		tracker := reconcile.NewTracker(total, rep)

		level := make([]pendingItem, 0, len(*desired))
		for _, it := range *desired {
			level = append(level, pendingItem{item: it, parentID: sess.RootItemID})
		}

		for len(level) > 0 {
			var (
				next []pendingItem
				mu   sync.Mutex
				wg   sync.WaitGroup
			)
			for _, p := range level {
				wg.Add(1)
				go func(p pendingItem) {
					defer wg.Done()
					path, id, err := b.ensureItem(ctx, sess, rep, tracker, p)
					if err != nil {
						skipItems(tracker, sess, p.item.Children)
						return
					}
					mu.Lock()
					for _, c := range p.item.Children {
						next = append(next, pendingItem{item: c, parentPath: path, parentID: id})
					}
					mu.Unlock()
				}(p)
			}
			wg.Wait()
			level = next
		}

		tracker.Complete()
		return nil
	})
}

// loadItemDependencies fetches shapes and vat types when their areas did not run.
func loadItemDependencies(ctx context.Context, sess *Session) error {
	if sess.Shapes == nil {
		shapes, err := sess.FetchShapes(ctx)
		if err != nil {
			return fmt.Errorf("fetch shapes: %w", err)
		}
		sess.Shapes = shapes
	}
	if sess.VatTypes == nil {
		vatTypes, err := sess.FetchVatTypes(ctx)
		if err != nil {
			return fmt.Errorf("fetch vat types: %w", err)
		}
		sess.VatTypes = vatTypes
	}
	return nil
}

// ensureItem resolves or creates one item and records the outcome on the tracker.
func (b *Bootstrapper) ensureItem(ctx context.Context, sess *Session, rep *areaReporter, tracker *reconcile.Tracker, p pendingItem) (string, string, error) {
	language := sess.DefaultLanguage.Code
	it := p.item
	label := itemLabel(sess, it)
	path := itemPath(sess, p.parentPath, it)

	res, err := sess.Resolver.Resolve(ctx, reference.Lookup{
		ExternalReference: it.ExternalReference,
		CatalogPath:       path,
		Language:          language,
		InstanceID:        sess.InstanceID,
		ShapeIdentifier:   it.Shape,
	})
	if err != nil {
		tracker.Done(label, err)
		return "", "", err
	}
	if res.Found() {
		sess.Resolver.Remember(path, res)
		tracker.Exists(label)
		return path, res.ItemID, nil
	}

	id, err := b.createItem(ctx, sess, rep, it, p.parentID)
	if err != nil {
		tracker.Done(label, err)
		return "", "", err
	}
	sess.Resolver.Remember(path, reference.Resolution{ItemID: id, ParentID: p.parentID})
	tracker.Done(label, nil)
	return path, id, nil
}

func (b *Bootstrapper) createItem(ctx context.Context, sess *Session, rep *areaReporter, it spec.Item, parentID string) (string, error) {
	shapeType, ok := sess.shapeType(it.Shape)
	if !ok {
		return "", fmt.Errorf("%q: %w", it.Shape, ErrUnknownShape)
	}
	language := sess.DefaultLanguage.Code

	input := map[string]any{
		"instanceId":      sess.InstanceID,
		"shapeIdentifier": it.Shape,
		"name":            it.Name.In(language, language),
	}
	if parentID != "" {
		input["tree"] = map[string]any{"parentId": parentID}
	}
	if it.ExternalReference != "" {
		input["externalReference"] = it.ExternalReference
	}
	if len(it.Components) > 0 {
		input["components"] = it.Components
	}
	if topics := b.itemTopicIDs(ctx, sess, rep, it); len(topics) > 0 {
		input["topicIds"] = topics
	}
	if shapeType == spec.ShapeProduct {
		input["vatTypeId"] = sess.vatTypeID(it.VatType)
		input["variants"] = productVariants(it, language)
	}

	data, err := query[map[string]struct {
		Create struct {
			ID string `json:"id"`
		} `json:"create"`
	}](ctx, sess.Management, itemMutation(mutationCreateItem, shapeType), map[string]any{
		"input":    input,
		"language": language,
	})
	if err != nil {
		return "", err
	}
	id := data[string(shapeType)].Create.ID
	if id == "" {
		return "", fmt.Errorf("create %s: no id returned", shapeType)
	}
	b.logger.Debug("Item created",
		zap.String("id", id),
		zap.String("shape", it.Shape),
		zap.String("parent", parentID),
	)

	for _, l := range sess.Languages {
		if l.Code == language {
			continue
		}
		name := it.Name.In(l.Code, language)
		_, err := query[struct{}](ctx, sess.Management, itemMutation(mutationUpdateItemName, shapeType), map[string]any{
			"id":       id,
			"input":    map[string]any{"name": name},
			"language": l.Code,
		})
		if err != nil {
			rep.Warn(fmt.Sprintf("%s: cannot set %s name", itemLabel(sess, it), l.Code), err)
		}
	}

	if shouldPublish(sess.Config.ItemPublish, it) {
		for _, l := range sess.Languages {
			if _, err := query[struct{}](ctx, sess.Management, mutationPublishItem, map[string]any{
				"id":       id,
				"language": l.Code,
			}); err != nil {
				rep.Warn(fmt.Sprintf("%s: cannot publish in %s", itemLabel(sess, it), l.Code), err)
			}
		}
	}

	return id, nil
}

// itemTopicIDs maps the topic paths of an item to ids. In amend mode missing topics
// are created; in replace mode they are reported and left out.
func (b *Bootstrapper) itemTopicIDs(ctx context.Context, sess *Session, rep *areaReporter, it spec.Item) []string {
	if len(it.Topics) == 0 {
		return nil
	}
	language := sess.DefaultLanguage.Code
	ids := make([]string, 0, len(it.Topics))
	for _, path := range it.Topics {
		if sess.Config.ItemTopics == ItemTopicsReplace {
			id, ok := sess.Resolver.ResolveTopic(language, path)
			if !ok {
				rep.Warn(fmt.Sprintf("%s: topic %s not found", itemLabel(sess, it), path), nil)
				continue
			}
			ids = append(ids, id)
			continue
		}

		id, err := b.ensureTopicPath(ctx, sess, language, path)
		if err != nil {
			rep.Warn(fmt.Sprintf("%s: cannot create topic %s", itemLabel(sess, it), path), err)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func productVariants(it spec.Item, language string) []map[string]any {
	variants := it.Variants
	if len(variants) == 0 {
		variants = []spec.ProductVariant{{
			Name:      it.Name,
			SKU:       spec.Slug(it.Name.In(language, language)),
			IsDefault: true,
		}}
	}

	hasDefault := false
	for _, v := range variants {
		if v.IsDefault {
			hasDefault = true
			break
		}
	}

	out := make([]map[string]any, 0, len(variants))
	for i, v := range variants {
		variant := map[string]any{
			"name":      v.Name.In(language, language),
			"sku":       v.SKU,
			"isDefault": v.IsDefault || (!hasDefault && i == 0),
		}
		if len(v.Price) > 0 {
			prices := make([]map[string]any, 0, len(v.Price))
			for identifier, price := range v.Price {
				prices = append(prices, map[string]any{"identifier": identifier, "price": price})
			}
			variant["priceVariants"] = prices
		}
		if len(v.Stock) > 0 {
			stock := make([]map[string]any, 0, len(v.Stock))
			for identifier, n := range v.Stock {
				stock = append(stock, map[string]any{"identifier": identifier, "stock": n})
			}
			variant["stockLocations"] = stock
		}
		out = append(out, variant)
	}
	return out
}

func shouldPublish(mode string, it spec.Item) bool {
	switch mode {
	case ItemPublishAlways:
		return true
	case ItemPublishDraft:
		return false
	default:
		return it.Published == nil || *it.Published
	}
}

func itemPath(sess *Session, parentPath string, it spec.Item) string {
	if it.CatalogPath != "" {
		return reference.NormalizePath(it.CatalogPath)
	}
	language := sess.DefaultLanguage.Code
	return reference.NormalizePath(spec.JoinPath(parentPath, spec.Slug(it.Name.In(language, language))))
}

func itemLabel(sess *Session, it spec.Item) string {
	language := sess.DefaultLanguage.Code
	if name := it.Name.In(language, language); name != "" {
		return name
	}
	if it.ExternalReference != "" {
		return it.ExternalReference
	}
	return it.CatalogPath
}

func skipItems(tracker *reconcile.Tracker, sess *Session, items []spec.Item) {
	for _, it := range items {
		tracker.Done(itemLabel(sess, it), ErrParentUnavailable)
		skipItems(tracker, sess, it.Children)
	}
}
