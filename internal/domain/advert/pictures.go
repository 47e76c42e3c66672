package advert

// ReconcilePictures merges newly uploaded filenames, a deletion list, and the
// previously stored picture set into the new persisted set. Each deletion name
// removes its first matching occurrence from stored; names absent from stored
// are ignored. Survivors keep their relative order and uploads are prepended
// in upload order. Pure: inputs are never mutated.
func ReconcilePictures(uploaded, deletions, stored []string) []string {
	survivors := append([]string(nil), stored...)
	for _, name := range deletions {
		for i, existing := range survivors {
			if existing == name {
				survivors = append(survivors[:i], survivors[i+1:]...)
				break
			}
		}
	}
	out := make([]string, 0, len(uploaded)+len(survivors))
	out = append(out, uploaded...)
	return append(out, survivors...)
}
