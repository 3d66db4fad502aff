package composite

import (
	opensearchclient "github.com/opensearch-project/opensearch-go/v2"

	"github.com/kingrain94/token-quota-api/internal/config"
	"github.com/kingrain94/token-quota-api/internal/repository"
	"github.com/kingrain94/token-quota-api/internal/repository/opensearch"
	"github.com/kingrain94/token-quota-api/internal/repository/postgres"
)

type compositeRepository struct {
	repository.PostgresRepository
	osRepo repository.OpenSearchRepository
}

func NewCompositeRepository(dbConnections *config.DatabaseConnections, osClient *opensearchclient.Client, osConfig *config.OpenSearchConfig) repository.Repository {
	return &compositeRepository{
		PostgresRepository: postgres.NewPostgresRepository(dbConnections),
		osRepo:             opensearch.NewRepository(osClient, osConfig),
	}
}

func (r *compositeRepository) OpenSearch() repository.OpenSearchRepository {
	return r.osRepo
}

// NewPostgresOnlyRepository is for processes that never search, such as the
// reset worker and meterctl. OpenSearch returns nil.
func NewPostgresOnlyRepository(dbConnections *config.DatabaseConnections) repository.Repository {
	return &compositeRepository{
		PostgresRepository: postgres.NewPostgresRepository(dbConnections),
	}
}
