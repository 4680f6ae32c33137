package gomlx

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/specialjcg/take-it-easy/internal/ai"
	"github.com/specialjcg/take-it-easy/internal/features"
	"github.com/specialjcg/take-it-easy/internal/parameters"
	"k8s.io/klog/v2"
)

// ModelsDirEnv is the environment variable locating the directory of
// pre-trained checkpoints. Its absence is non-fatal: models start with fresh
// random weights.
const ModelsDirEnv = "TAKEITEASY_MODELS"

// Manager owns the process-wide networks: one policy+value model and an
// optional Q ranking model, shared read-only by every session and search.
type Manager struct {
	scorer *Scorer
	qnet   *QScorer
}

// New builds the networks selected by params:
//
//   - "model": one of resnet, resnet_onehot, gnn, gat, transformer.
//     Defaults to gat.
//   - "qnet": a bare key, "true" or "1" attaches the Q ranking net; "false"
//     or "0" leaves it out.
//
// Checkpoints are loaded from $TAKEITEASY_MODELS/<model-name> when the
// directory exists.
func New(params parameters.Params) (*Manager, error) {
	modelName, err := parameters.PopParamOr(params, "model", "gat")
	if err != nil {
		return nil, err
	}
	withQNet, err := parameters.PopParamOr(params, "qnet", false)
	if err != nil {
		return nil, err
	}

	var model Model
	switch modelName {
	case "resnet":
		model = NewResNet(features.ArchSpatial)
	case "resnet_onehot":
		model = NewResNet(features.ArchOneHot)
	case "gnn":
		model = NewGNN()
	case "gat":
		model = NewGAT()
	case "transformer":
		model = NewTransformer()
	default:
		return nil, errors.Errorf("unknown model %q", modelName)
	}

	m := &Manager{}
	m.scorer, err = NewScorer(model, checkpointDir(model.Name()))
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("Created scorer %s", m.scorer)

	if withQNet {
		qnet := NewQNet()
		m.qnet, err = NewQScorer(qnet, checkpointDir(qnet.Name()))
		if err != nil {
			return nil, err
		}
		klog.V(1).Infof("Created ranking net %s", m.qnet)
	}
	return m, nil
}

// checkpointDir returns the checkpoint directory for a model, or "" when no
// models directory is configured or the model has no saved weights yet.
func checkpointDir(modelName string) string {
	root := os.Getenv(ModelsDirEnv)
	if root == "" {
		klog.V(1).Infof("%s not set, using fresh random weights for %s", ModelsDirEnv, modelName)
		return ""
	}
	dir := filepath.Join(root, modelName)
	if _, err := os.Stat(dir); err != nil {
		klog.Warningf("No checkpoint at %s, using fresh random weights for %s", dir, modelName)
		return ""
	}
	return dir
}

// Policy returns the shared policy scorer.
func (m *Manager) Policy() ai.PolicyScorer { return m.scorer }

// Value returns the shared value scorer.
func (m *Manager) Value() ai.ValueScorer { return m.scorer }

// Q returns the shared ranking scorer, or nil when not configured.
func (m *Manager) Q() ai.QScorer {
	if m.qnet == nil {
		return nil
	}
	return m.qnet
}

// Architecture of the underlying policy/value model; decides the score
// normalization convention.
func (m *Manager) Architecture() features.Architecture {
	return m.scorer.model.Architecture()
}
