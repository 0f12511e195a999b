package screening

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"hrms-admin-go/internal/storage"
)

// Item 待筛选的一份简历
type Item struct {
	Key  string // 在来源中的唯一标识：对象键或本地路径
	Name string // 上传时使用的文件名
	Size int64
}

// Source 简历来源
type Source interface {
	List(ctx context.Context) ([]Item, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ObjectStore 对象存储中的简历，*storage.MinIO 实现了它
type ObjectStore interface {
	ListResumes(ctx context.Context, prefix string) ([]storage.ResumeObject, error)
	OpenResume(ctx context.Context, key string) (io.ReadCloser, error)
}

// BucketSource 从对象存储的某个前缀下读取简历
type BucketSource struct {
	store  ObjectStore
	prefix string
}

// NewBucketSource 创建对象存储来源
func NewBucketSource(store ObjectStore, prefix string) *BucketSource {
	return &BucketSource{store: store, prefix: prefix}
}

// List 实现 Source
func (s *BucketSource) List(ctx context.Context) ([]Item, error) {
	objects, err := s.store.ListResumes(ctx, s.prefix)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(objects))
	for _, obj := range objects {
		items = append(items, Item{Key: obj.Key, Name: obj.Name(), Size: obj.Size})
	}
	return items, nil
}

// Open 实现 Source
func (s *BucketSource) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.store.OpenResume(ctx, key)
}

// FileSource 本地文件或目录。目录会递归展开，只保留简历格式的文件。
type FileSource struct {
	paths []string
}

// NewFileSource 创建本地文件来源
func NewFileSource(paths ...string) *FileSource {
	return &FileSource{paths: paths}
}

// List 实现 Source。显式给出的文件不检查扩展名。
func (s *FileSource) List(ctx context.Context) ([]Item, error) {
	var items []Item
	seen := map[string]bool{}
	add := func(path string, size int64) {
		if seen[path] {
			return
		}
		seen[path] = true
		items = append(items, Item{Key: path, Name: filepath.Base(path), Size: size})
	}

	for _, p := range s.paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("读取 %s 失败: %w", p, err)
		}
		if !info.IsDir() {
			add(p, info.Size())
			continue
		}
		// WalkDir 按字典序遍历，批次内的顺序是稳定的
		var dirItems []Item
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if d.IsDir() || !storage.IsResumeKey(path) {
				return nil
			}
			fi, err := d.Info()
			if err != nil {
				return err
			}
			dirItems = append(dirItems, Item{Key: path, Size: fi.Size()})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("遍历目录 %s 失败: %w", p, err)
		}
		for _, it := range dirItems {
			add(it.Key, it.Size)
		}
	}
	return items, nil
}

// Open 实现 Source
func (s *FileSource) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return os.Open(key)
}
