package health

// Overview maps metric name to its aggregate over a record list.
type Overview map[string]float64

func (o Overview) Value(metric string) (float64, bool) {
	v, ok := o[metric]
	return v, ok
}

// Aggregate computes the mean of each averaged metric and the sum of each
// counted metric, over the records where the metric is present. A metric no
// record carries is absent from the result. Missing values are left out of
// the divisor rather than counted as zero.
func Aggregate(records []PerformanceRecord, set MetricSet) Overview {
	out := make(Overview)
	if len(records) == 0 {
		return out
	}
	for _, c := range set.Criteria {
		var total float64
		var n int
		for _, r := range records {
			if v, ok := r.Value(c.Metric); ok {
				total += v
				n++
			}
		}
		if n == 0 {
			continue
		}
		if c.Sum {
			out[c.Metric] = total
		} else {
			out[c.Metric] = total / float64(n)
		}
	}
	return out
}
