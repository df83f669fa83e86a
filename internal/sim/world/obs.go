package world

// FeatureSize is the length of the non-spatial feature vector:
// embedding, one-hot last action, last reward, and the (dx, dy) offset
// to the goal.
func (w *World) FeatureSize() int {
	return w.cfg.EmbeddingSize + ActNum + 3
}

// buildObservation fills the caller-zeroed view and feature buffers,
// one disjoint slice per live agent, in parallel. Shared state is only
// read here, so the fan-out needs no locking.
func (w *World) buildObservation(view, feature []float32) {
	viewStride := w.cfg.ViewHeight * w.cfg.ViewWidth * ChannelNum
	featStride := w.FeatureSize()
	emb := w.cfg.EmbeddingSize

	parallelFor(w.dir.Len(), func(i int) {
		a := w.dir.At(i)

		w.grid.ExtractView(a, w.lights, view[i*viewStride:(i+1)*viewStride],
			w.cfg.ViewHeight, w.cfg.ViewWidth, ChannelNum)

		f := feature[i*featStride : (i+1)*featStride]
		copy(f, a.Embedding)
		f[emb+int(a.Act)] = 1
		f[emb+ActNum] = a.LastReward
		f[emb+ActNum+1] = float32(a.Pos.X - a.Goal.X)
		f[emb+ActNum+2] = float32(a.Pos.Y - a.Goal.Y)
	})
}
