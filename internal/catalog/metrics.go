package catalog

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	uploadOK       = "ok"
	uploadRejected = "rejected"
	uploadFailed   = "error"
)

type domainMetrics struct {
	uploads *prometheus.CounterVec
}

func newDomainMetrics(reg prometheus.Registerer, store Store) *domainMetrics {
	m := &domainMetrics{
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_uploads_total",
				Help: "Image uploads by result",
			},
			[]string{"result"},
		),
	}

	products := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "catalog_products",
			Help: "Products currently held by the store",
		},
		func() float64 {
			ps, err := store.List(context.Background())
			if err != nil {
				return 0
			}
			return float64(len(ps))
		},
	)

	reg.MustRegister(m.uploads, products)
	return m
}

func (m *domainMetrics) upload(result string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result).Inc()
}
