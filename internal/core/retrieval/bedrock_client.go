package retrieval

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent"
	agenttypes "github.com/aws/aws-sdk-go-v2/service/bedrockagent/types"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	runtimetypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/google/uuid"

	cfg "github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/config"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/models"
)

// BedrockRetriever talks to a Bedrock Knowledge Base: ingestion jobs via
// the agent API, retrieval and grounded generation via the agent runtime.
type BedrockRetriever struct {
	agent   *bedrockagent.Client
	runtime *bedrockagentruntime.Client

	knowledgeBaseID  string
	dataSourceID     string
	guardrailID      string
	guardrailVersion string
	modelARN         string

	logger *slog.Logger
}

func NewBedrockRetriever(awsCfg aws.Config, c *cfg.Config, logger *slog.Logger) core.Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &BedrockRetriever{
		agent:            bedrockagent.NewFromConfig(awsCfg),
		runtime:          bedrockagentruntime.NewFromConfig(awsCfg),
		knowledgeBaseID:  c.KnowledgeBaseID,
		dataSourceID:     c.DataSourceID,
		guardrailID:      c.GuardrailID,
		guardrailVersion: c.GuardrailVersion,
		modelARN:         c.ModelARN,
		logger:           logger,
	}
}

// StartSync kicks off an ingestion job against the data source. The client
// token makes accidental double submissions idempotent on the service side.
func (b *BedrockRetriever) StartSync(ctx context.Context) (*models.IngestionJob, error) {
	out, err := b.agent.StartIngestionJob(ctx, &bedrockagent.StartIngestionJobInput{
		KnowledgeBaseId: aws.String(b.knowledgeBaseID),
		DataSourceId:    aws.String(b.dataSourceID),
		ClientToken:     aws.String(uuid.NewString()),
	})
	if err != nil {
		return nil, &core.SyncUnavailableError{Err: err}
	}

	job := mapIngestionJob(out.IngestionJob)
	b.logger.Info("started ingestion job", "job_id", job.JobID, "status", job.Status)
	return job, nil
}

func (b *BedrockRetriever) SyncJobStatus(ctx context.Context, jobID string) (*models.IngestionJob, error) {
	out, err := b.agent.GetIngestionJob(ctx, &bedrockagent.GetIngestionJobInput{
		KnowledgeBaseId: aws.String(b.knowledgeBaseID),
		DataSourceId:    aws.String(b.dataSourceID),
		IngestionJobId:  aws.String(jobID),
	})
	if err != nil {
		return nil, &core.SyncUnavailableError{Err: err}
	}
	return mapIngestionJob(out.IngestionJob), nil
}

func (b *BedrockRetriever) CorpusReady(ctx context.Context) (bool, error) {
	out, err := b.agent.GetKnowledgeBase(ctx, &bedrockagent.GetKnowledgeBaseInput{
		KnowledgeBaseId: aws.String(b.knowledgeBaseID),
	})
	if err != nil {
		return false, &core.SyncUnavailableError{Err: err}
	}
	return out.KnowledgeBase != nil && out.KnowledgeBase.Status == agenttypes.KnowledgeBaseStatusActive, nil
}

func (b *BedrockRetriever) RetrievePassages(ctx context.Context, question string, maxResults int32) ([]models.Passage, error) {
	out, err := b.runtime.Retrieve(ctx, &bedrockagentruntime.RetrieveInput{
		KnowledgeBaseId: aws.String(b.knowledgeBaseID),
		RetrievalQuery: &runtimetypes.KnowledgeBaseQuery{
			Text: aws.String(question),
		},
		RetrievalConfiguration: &runtimetypes.KnowledgeBaseRetrievalConfiguration{
			VectorSearchConfiguration: &runtimetypes.KnowledgeBaseVectorSearchConfiguration{
				NumberOfResults: aws.Int32(maxResults),
			},
		},
	})
	if err != nil {
		return nil, &core.SyncUnavailableError{Err: err}
	}

	passages := make([]models.Passage, 0, len(out.RetrievalResults))
	for _, res := range out.RetrievalResults {
		p := models.Passage{
			Score: aws.ToFloat64(res.Score),
		}
		if res.Content != nil {
			p.Excerpt = aws.ToString(res.Content.Text)
		}
		if res.Location != nil && res.Location.S3Location != nil {
			p.URI = aws.ToString(res.Location.S3Location.Uri)
		}
		passages = append(passages, p)
	}
	return passages, nil
}

func (b *BedrockRetriever) GenerateAnswer(ctx context.Context, question string, maxResults int32, useGuardrails bool) (*models.Generation, error) {
	kbCfg := &runtimetypes.KnowledgeBaseRetrieveAndGenerateConfiguration{
		KnowledgeBaseId: aws.String(b.knowledgeBaseID),
		ModelArn:        aws.String(b.modelARN),
		RetrievalConfiguration: &runtimetypes.KnowledgeBaseRetrievalConfiguration{
			VectorSearchConfiguration: &runtimetypes.KnowledgeBaseVectorSearchConfiguration{
				NumberOfResults: aws.Int32(maxResults),
			},
		},
	}

	applied := useGuardrails && b.guardrailID != ""
	if applied {
		kbCfg.GenerationConfiguration = &runtimetypes.GenerationConfiguration{
			GuardrailConfiguration: &runtimetypes.GuardrailConfiguration{
				GuardrailId:      aws.String(b.guardrailID),
				GuardrailVersion: aws.String(b.guardrailVersion),
			},
		}
	}

	out, err := b.runtime.RetrieveAndGenerate(ctx, &bedrockagentruntime.RetrieveAndGenerateInput{
		Input: &runtimetypes.RetrieveAndGenerateInput{
			Text: aws.String(question),
		},
		RetrieveAndGenerateConfiguration: &runtimetypes.RetrieveAndGenerateConfiguration{
			Type:                       runtimetypes.RetrieveAndGenerateTypeKnowledgeBase,
			KnowledgeBaseConfiguration: kbCfg,
		},
	})
	if err != nil {
		return nil, &core.SyncUnavailableError{Err: err}
	}

	gen := &models.Generation{
		Blocked:           string(out.GuardrailAction) == "INTERVENED",
		GuardrailsApplied: applied,
	}
	if out.Output != nil {
		gen.Text = aws.ToString(out.Output.Text)
	}
	return gen, nil
}

// Ping reuses the knowledge-base lookup as a cheap reachability probe.
func (b *BedrockRetriever) Ping(ctx context.Context) error {
	ctxPing, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := b.agent.GetKnowledgeBase(ctxPing, &bedrockagent.GetKnowledgeBaseInput{
		KnowledgeBaseId: aws.String(b.knowledgeBaseID),
	})
	if err != nil {
		return &core.SyncUnavailableError{Err: err}
	}
	return nil
}

func mapIngestionJob(job *agenttypes.IngestionJob) *models.IngestionJob {
	if job == nil {
		return nil
	}

	out := &models.IngestionJob{
		JobID:     aws.ToString(job.IngestionJobId),
		Status:    models.JobStatus(job.Status),
		StartedAt: aws.ToTime(job.StartedAt),
	}
	if job.UpdatedAt != nil {
		t := *job.UpdatedAt
		out.UpdatedAt = &t
	}
	if st := job.Statistics; st != nil {
		out.DocumentsScanned = st.NumberOfDocumentsScanned
		out.DocumentsIndexed = st.NumberOfNewDocumentsIndexed +
			st.NumberOfModifiedDocumentsIndexed
		out.DocumentsFailed = st.NumberOfDocumentsFailed
	}
	return out
}
