package uploads

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tokyosushibar/backend/models"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "uploads").Logger()

const (
	// MaxUploadBytes caps the source image size.
	MaxUploadBytes = 2 << 20

	normalWidth    = 600
	thumbnailWidth = 350
)

// Storage is the write-only object storage contract.
type Storage interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
}

type ProductProvider interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type AttachmentStore interface {
	SavePreviewAttachment(ctx context.Context, productID uuid.UUID, path string) (*models.Attachment, error)
}

// Pipeline turns one uploaded image into resized variants in every output
// encoding and records a single preview attachment for the product.
type Pipeline struct {
	storage     Storage
	products    ProductProvider
	attachments AttachmentStore
	encoders    []Encoder
}

func NewPipeline(storage Storage, products ProductProvider, attachments AttachmentStore, encoders []Encoder) *Pipeline {
	if len(encoders) == 0 {
		encoders = DefaultEncoders()
	}
	return &Pipeline{
		storage:     storage,
		products:    products,
		attachments: attachments,
		encoders:    encoders,
	}
}

// GenerateDerivatives validates the source, produces a normal and a
// thumbnail variant per output encoding, uploads them under deterministic
// keys derived from the product slug, and records the preview attachment.
// Any per-format failure aborts the whole operation; nothing is retried and
// objects already uploaded by the failed attempt are left behind.
func (p *Pipeline) GenerateDerivatives(ctx context.Context, source []byte, productID uuid.UUID) (*models.Attachment, error) {
	if len(source) == 0 {
		return nil, &models.ValidationError{Msg: "image payload is empty"}
	}
	if len(source) > MaxUploadBytes {
		return nil, &models.ValidationError{Msg: fmt.Sprintf("image exceeds %d bytes", MaxUploadBytes)}
	}

	img, format, err := image.Decode(bytes.NewReader(source))
	if err != nil {
		return nil, &models.ValidationError{Msg: "image is not a decodable raster file"}
	}
	switch format {
	case "jpeg", "png", "gif":
	default:
		return nil, &models.ValidationError{Msg: "unsupported image format: " + format}
	}

	product, err := p.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	base := product.Slug

	normal := imaging.Resize(img, normalWidth, 0, imaging.Lanczos)
	thumbnail := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)

	for _, enc := range p.encoders {
		if err := p.uploadVariant(ctx, enc, normal, "images/"+base+"."+enc.Format); err != nil {
			return nil, err
		}
		if err := p.uploadVariant(ctx, enc, thumbnail, "images/thumbnails/"+base+"."+enc.Format); err != nil {
			return nil, err
		}
	}

	attachment, err := p.attachments.SavePreviewAttachment(ctx, productID, base)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("product_id", productID.String()).
		Str("base", base).
		Int("formats", len(p.encoders)).
		Msg("image derivatives stored")
	return attachment, nil
}

func (p *Pipeline) uploadVariant(ctx context.Context, enc Encoder, img image.Image, key string) error {
	var buf bytes.Buffer
	if err := enc.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := p.storage.PutObject(ctx, key, buf.Bytes(), enc.ContentType); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}
