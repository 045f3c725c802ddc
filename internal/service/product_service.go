package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"mime/multipart"
	"strings"

	"coffeeshop-backend/internal/cache"
	"coffeeshop-backend/internal/errors"
	"coffeeshop-backend/internal/model"
	"coffeeshop-backend/internal/repository/interfaces"
	"coffeeshop-backend/internal/storage"
	"coffeeshop-backend/internal/util"

	"go.uber.org/zap"
)

const (
	defaultTopRatedLimit = 10
	maxTopRatedLimit     = 50
	maxImageSize         = 5 << 20
)

// ProductService 商品目录，读操作走缓存，写操作后整体失效
type ProductService struct {
	productRepo interfaces.ProductRepository
	tx          interfaces.TxManager
	cache       cache.Cache
	files       storage.FileStorage
}

type ProductServiceInterface interface {
	ListProducts(ctx context.Context, page model.PageRequest) (model.Page[*model.Product], error)
	GetProduct(ctx context.Context, id int) (*model.Product, error)
	ProductsByCategory(ctx context.Context, category model.ProductCategory, page model.PageRequest) (model.Page[*model.Product], error)
	SearchProducts(ctx context.Context, query string, page model.PageRequest) (model.Page[*model.Product], error)
	FeaturedProducts(ctx context.Context) ([]*model.Product, error)
	TopRatedProducts(ctx context.Context, limit int) ([]*model.Product, error)
	CreateProduct(ctx context.Context, req model.CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id int, req model.UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int) error
	UploadImage(ctx context.Context, id int, file *multipart.FileHeader) (*model.Product, error)
}

var _ ProductServiceInterface = (*ProductService)(nil)

func NewProductService(productRepo interfaces.ProductRepository, tx interfaces.TxManager, c cache.Cache, files storage.FileStorage) *ProductService {
	return &ProductService{productRepo: productRepo, tx: tx, cache: c, files: files}
}

func (s *ProductService) ListProducts(ctx context.Context, page model.PageRequest) (model.Page[*model.Product], error) {
	key := cache.Key("products", "list", page.Page, page.Size)
	return cache.GetOrLoad(ctx, s.cache, key, func() (model.Page[*model.Product], error) {
		products, total, err := s.productRepo.FindAvailable(ctx, page)
		if err != nil {
			return model.Page[*model.Product]{}, err
		}
		return model.NewPage(products, page, total), nil
	})
}

func (s *ProductService) GetProduct(ctx context.Context, id int) (*model.Product, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.Key("products", "id", id), func() (*model.Product, error) {
		return s.findProduct(ctx, id)
	})
}

func (s *ProductService) findProduct(ctx context.Context, id int) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.NotFound(errors.ErrProductNotFound, "Product not found with ID: %d", id)
	}
	return product, nil
}

func (s *ProductService) ProductsByCategory(ctx context.Context, category model.ProductCategory, page model.PageRequest) (model.Page[*model.Product], error) {
	if !category.Valid() {
		return model.Page[*model.Product]{}, errors.BadRequest(errors.ErrBadRequest, "Invalid product category: %s", category)
	}
	key := cache.Key("products", "category", category, page.Page, page.Size)
	return cache.GetOrLoad(ctx, s.cache, key, func() (model.Page[*model.Product], error) {
		products, total, err := s.productRepo.FindByCategory(ctx, category, page)
		if err != nil {
			return model.Page[*model.Product]{}, err
		}
		return model.NewPage(products, page, total), nil
	})
}

// SearchProducts 搜索结果不缓存
func (s *ProductService) SearchProducts(ctx context.Context, query string, page model.PageRequest) (model.Page[*model.Product], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.Page[*model.Product]{}, errors.Validation(map[string]string{"query": "must not be blank"})
	}
	products, total, err := s.productRepo.Search(ctx, query, page)
	if err != nil {
		return model.Page[*model.Product]{}, err
	}
	return model.NewPage(products, page, total), nil
}

func (s *ProductService) FeaturedProducts(ctx context.Context) ([]*model.Product, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.Key("products", "featured"), func() ([]*model.Product, error) {
		return s.productRepo.FindFeatured(ctx)
	})
}

func (s *ProductService) TopRatedProducts(ctx context.Context, limit int) ([]*model.Product, error) {
	if limit <= 0 {
		limit = defaultTopRatedLimit
	}
	if limit > maxTopRatedLimit {
		limit = maxTopRatedLimit
	}
	return cache.GetOrLoad(ctx, s.cache, cache.Key("products", "top-rated", limit), func() ([]*model.Product, error) {
		return s.productRepo.FindTopRated(ctx, limit)
	})
}

func (s *ProductService) CreateProduct(ctx context.Context, req model.CreateProductRequest) (*model.Product, error) {
	product := req.ToProduct()
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.productRepo.Create(ctx, product); err != nil {
			return err
		}
		// 回读以获得数据库生成的时间戳
		created, err := s.findProduct(ctx, product.ID)
		if err != nil {
			return err
		}
		product = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	util.Logger.Info("商品创建成功", zap.Int("product_id", product.ID))
	return product, nil
}

// UpdateProduct 只修改请求中出现的字段
func (s *ProductService) UpdateProduct(ctx context.Context, id int, req model.UpdateProductRequest) (*model.Product, error) {
	var product *model.Product
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		product, err = s.findProduct(ctx, id)
		if err != nil {
			return err
		}
		req.Apply(product)
		if err := s.productRepo.Update(ctx, product); err != nil {
			return err
		}
		product, err = s.findProduct(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	util.Logger.Info("商品已更新", zap.Int("product_id", id))
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id int) error {
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.findProduct(ctx, id); err != nil {
			return err
		}
		if err := s.productRepo.Delete(ctx, id); err != nil {
			if stderrors.Is(err, interfaces.ErrReferenced) {
				return errors.BadRequest(errors.ErrProductInUse, "Product is referenced by existing orders")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	util.Logger.Info("商品已删除", zap.Int("product_id", id))
	return nil
}

// UploadImage 上传商品图片并更新图片地址
func (s *ProductService) UploadImage(ctx context.Context, id int, file *multipart.FileHeader) (*model.Product, error) {
	if !util.IsAllowedImage(file.Filename) {
		return nil, errors.Validation(map[string]string{"image": "must be a jpg, jpeg, png or webp file"})
	}
	if file.Size > maxImageSize {
		return nil, errors.New(errors.ErrPayloadTooLarge, "Image must be at most 5MB")
	}

	if _, err := s.findProduct(ctx, id); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("products/%d/%s", id, util.GenerateUniqueFilename(file.Filename))
	url, err := s.files.UploadFile(ctx, file, path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorage, "failed to store image", err)
	}

	var product *model.Product
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.productRepo.UpdateImage(ctx, id, url); err != nil {
			return err
		}
		var err error
		product, err = s.findProduct(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	util.Logger.Info("商品图片已更新", zap.Int("product_id", id), zap.String("url", url))
	return product, nil
}

// invalidate 在事务提交后调用，失败只记录日志
func (s *ProductService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		util.Logger.Warn("清空商品缓存失败", zap.Error(err))
	}
}
