// Package store is the stash: a plain directory tree holding every page the
// crawler has fetched, plus the URL list files that record crawl order.
//
//	<stash>/
//	  master_list.txt
//	  master_index.txt
//	  <cemId>_<cemSlug>/
//	    <cemId>_page.html
//	    <cemId>_burials/<memId>_<slug>.html
//	    <cemId>_burials_list.txt
//	    <cemId>_parents/<famId>_<famSlug>_parent-of_<burId>_<burSlug>.html
//	    <cemId>_parents_list.txt
//	    ...
//
// File names are derived from a Key alone, so the same logical page always
// lands in the same file and re-running a crawl rewrites nothing.
package store
