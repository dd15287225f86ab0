package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/gammazero/workerpool"
)

// DefaultBatchProcessor 默认批处理器
// 简历分块数量可能很大，分批并行调用嵌入API以提高吞吐
type DefaultBatchProcessor struct {
	client     Client // 嵌入客户端
	batchSize  int    // 每批处理的文本数量
	maxWorkers int    // 最大并行工作线程数
	skipEmpty  bool   // 是否跳过空文本
}

// NewBatchProcessor 创建新的批处理器
func NewBatchProcessor(client Client, batchSize int, maxWorkers int) *DefaultBatchProcessor {
	if batchSize <= 0 {
		batchSize = 16
	}

	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	return &DefaultBatchProcessor{
		client:     client,
		batchSize:  batchSize,
		maxWorkers: maxWorkers,
		skipEmpty:  true,
	}
}

// Process 处理一批文本，将它们分成多个小批次并行处理
// 返回的向量顺序与输入文本顺序一致，空文本对应nil向量
func (p *DefaultBatchProcessor) Process(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	// 过滤空文本并记录位置
	var filteredTexts []string
	var emptyIndices []int

	if p.skipEmpty {
		filteredTexts = make([]string, 0, len(texts))
		for i, text := range texts {
			if text != "" {
				filteredTexts = append(filteredTexts, text)
			} else {
				emptyIndices = append(emptyIndices, i)
			}
		}
	} else {
		filteredTexts = texts
	}

	if len(filteredTexts) == 0 {
		return make([][]float32, len(texts)), nil
	}

	batches := splitIntoBatches(filteredTexts, p.batchSize)

	wp := workerpool.New(p.maxWorkers)
	resultsMu := sync.Mutex{}
	batchResults := make([][][]float32, len(batches))
	var processingErr error
	var errOnce sync.Once

	for i, batch := range batches {
		i, batch := i, batch
		wp.Submit(func() {
			select {
			case <-ctx.Done():
				errOnce.Do(func() {
					processingErr = ctx.Err()
				})
				return
			default:
			}

			vectors, err := p.client.EmbedBatch(ctx, batch)

			resultsMu.Lock()
			defer resultsMu.Unlock()

			if err != nil {
				errOnce.Do(func() {
					processingErr = fmt.Errorf("batch %d processing error: %v", i, err)
				})
				return
			}

			batchResults[i] = vectors
		})
	}

	wp.StopWait()

	if processingErr != nil {
		return nil, processingErr
	}

	// 按批次顺序合并结果
	var allVectors [][]float32
	for _, vectors := range batchResults {
		allVectors = append(allVectors, vectors...)
	}

	// 将空文本的nil向量插回原位置
	if len(emptyIndices) > 0 {
		finalResults := make([][]float32, len(texts))
		vectorIndex := 0

		for i := 0; i < len(texts); i++ {
			if containsInt(emptyIndices, i) {
				finalResults[i] = nil
			} else if vectorIndex < len(allVectors) {
				finalResults[i] = allVectors[vectorIndex]
				vectorIndex++
			}
		}

		return finalResults, nil
	}

	return allVectors, nil
}

// splitIntoBatches 将文本列表分割成多个批次
func splitIntoBatches(texts []string, batchSize int) [][]string {
	if batchSize <= 0 {
		batchSize = 1
	}

	batches := make([][]string, 0, (len(texts)+batchSize-1)/batchSize)

	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, texts[i:end])
	}

	return batches
}

// containsInt 检查整数切片中是否包含特定值
func containsInt(slice []int, val int) bool {
	for _, item := range slice {
		if item == val {
			return true
		}
	}
	return false
}
